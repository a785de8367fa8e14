package api

import (
	"strings"
	"testing"
)

func TestOutputTo(t *testing.T) {
	data := map[string]any{"current_ang": 5, "total_processed": 4}

	t.Run("yaml", func(t *testing.T) {
		var sb strings.Builder
		if err := OutputTo(&sb, OutputFormatYAML, data); err != nil {
			t.Fatalf("OutputTo failed: %v", err)
		}
		if !strings.Contains(sb.String(), "current_ang: 5") {
			t.Errorf("unexpected yaml output: %s", sb.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var sb strings.Builder
		if err := OutputTo(&sb, OutputFormatJSON, data); err != nil {
			t.Fatalf("OutputTo failed: %v", err)
		}
		if !strings.Contains(sb.String(), `"current_ang": 5`) {
			t.Errorf("unexpected json output: %s", sb.String())
		}
	})
}

func TestSetOutputFormat(t *testing.T) {
	t.Cleanup(func() { SetOutputFormat("yaml") })

	SetOutputFormat("json")
	if GetOutputFormat() != OutputFormatJSON {
		t.Error("expected json format")
	}

	// Unknown values fall back to yaml.
	SetOutputFormat("xml")
	if GetOutputFormat() != OutputFormatYAML {
		t.Error("expected yaml fallback")
	}
}
