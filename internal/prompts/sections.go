package prompts

// SectionNote returns extra guidance for angs that fall inside well-known
// banis, so the analysis acknowledges their structure and context. Returns
// empty for angs with no special section.
func SectionNote(ang int) string {
	switch {
	case ang == 1:
		return "This ang opens with the Mool Mantar - the root verse of Sikhi. Give it word-by-word treatment before anything else."
	case ang >= 2 && ang <= 8:
		return "This is from Japji Sahib - the morning prayer that sets the foundation of Sikh thought. Analyze with extra care."
	case ang >= 262 && ang <= 296:
		return "This is from Sukhmani Sahib - the Psalm of Peace by Guru Arjan Dev Ji. This is Ashtpadi format - analyze the structure of 8 stanzas building on each other."
	case ang >= 462 && ang <= 475:
		return "This is from Asa Di Var - the morning hymn. Analyze the Pauri (stanza) and Salok structure. This is sung in Gurdwaras every morning."
	case ang >= 917 && ang <= 922:
		return "This is from Anand Sahib - the Song of Bliss by Guru Amar Das Ji. This is read at every Sikh ceremony. Analyze the progression toward Anand (bliss)."
	case ang >= 1426 && ang <= 1429:
		return "This is from Salok Mahalla 9 - the final compositions added to Guru Granth Sahib by Guru Tegh Bahadur Ji before Shaheedi. These carry special weight."
	case ang == 1430:
		return "This is Ragmala - the last ang. There is historical discussion about this. Present both perspectives respectfully."
	}
	return ""
}
