package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/cobscn/mcp"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureJSON is a minimal syntax-tree document: one section whose single
// paragraph performs a statement, branches, and exits.
const fixtureJSON = `{
  "procedure_division": {
    "sections": [
      {
        "name": "MAIN-LOGIC",
        "source": {"from_char": 0, "to_char": 200, "from_line": 1, "to_line": 10},
        "paragraphs": [
          {
            "name": "START-UP",
            "source": {"from_char": 10, "to_char": 190, "from_line": 2, "to_line": 9},
            "sentences": [
              {
                "source": {"from_char": 20, "to_char": 180, "from_line": 3, "to_line": 8},
                "stmts": [
                  {"type": "unparsed", "verb": "PERFORM", "text": "PERFORM INIT-VALUES",
                   "source": {"from_char": 20, "to_char": 40, "from_line": 3, "to_line": 3}},
                  {"type": "branch", "condition": "WS-COUNT > 0",
                   "source": {"from_char": 50, "to_char": 120, "from_line": 4, "to_line": 6},
                   "then": [
                     {"type": "move", "text": "MOVE 1 TO WS-FLAG",
                      "source": {"from_char": 70, "to_char": 90, "from_line": 5, "to_line": 5}}
                   ],
                   "else": [
                     {"type": "move", "text": "MOVE 0 TO WS-FLAG",
                      "source": {"from_char": 95, "to_char": 115, "from_line": 6, "to_line": 6}}
                   ]},
                  {"type": "exit_section",
                   "source": {"from_char": 130, "to_char": 150, "from_line": 7, "to_line": 7}}
                ]
              }
            ]
          }
        ]
      }
    ]
  }
}`

func setupFixture(t *testing.T) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), "main_logic.json")
	require.NoError(t, os.WriteFile(dst, []byte(fixtureJSON), 0o644))
	return dst
}

func newHandlerSet(t *testing.T) *mcp.HandlerSet {
	t.Helper()
	deps, err := mcp.NewDependencies("")
	require.NoError(t, err)
	return mcp.NewHandlerSet(deps)
}

func textFromContent(content mcplib.Content) string {
	tc, _ := mcplib.AsTextContent(content)
	if tc == nil {
		return ""
	}
	return tc.Text
}

func callReq(arguments interface{}) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Arguments: arguments,
		},
	}
}

func TestHandleRestructureSection(t *testing.T) {
	tests := map[string]struct {
		arguments    interface{}
		usesFixture  bool
		wantErr      bool
		expectPrefix string
		check        func(t *testing.T, text string)
	}{
		"invalid_arguments_format": {
			arguments:    "not-a-map",
			wantErr:      true,
			expectPrefix: "invalid arguments format",
		},
		"path_missing": {
			arguments:    map[string]interface{}{},
			wantErr:      true,
			expectPrefix: "path parameter is required",
		},
		"path_not_exist": {
			arguments:    map[string]interface{}{"path": "/non/existing/path"},
			wantErr:      true,
			expectPrefix: "path does not exist",
		},
		"success": {
			arguments:   map[string]interface{}{},
			usesFixture: true,
			check: func(t *testing.T, text string) {
				var result map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(text), &result))
				assert.Contains(t, result, "results")
				assert.Contains(t, result, "summary")
			},
		},
		"unknown_section_filtered_out": {
			arguments:   map[string]interface{}{"section": "NO-SUCH-SECTION"},
			usesFixture: true,
			check: func(t *testing.T, text string) {
				var result struct {
					Results []interface{} `json:"results"`
				}
				require.NoError(t, json.Unmarshal([]byte(text), &result))
				assert.Empty(t, result.Results)
			},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			h := newHandlerSet(t)

			args := tc.arguments
			if tc.usesFixture {
				m := args.(map[string]interface{})
				m["path"] = setupFixture(t)
			}

			res, err := h.HandleRestructureSection(context.Background(), callReq(args))
			require.NoError(t, err)
			require.Greater(t, len(res.Content), 0)
			text := textFromContent(res.Content[0])

			assert.Equal(t, tc.wantErr, res.IsError)
			if tc.expectPrefix != "" {
				assert.True(t, strings.HasPrefix(text, tc.expectPrefix),
					"error text %q does not start with %q", text, tc.expectPrefix)
			}
			if tc.check != nil {
				tc.check(t, text)
			}
		})
	}
}

func TestHandleDumpStage(t *testing.T) {
	tests := map[string]struct {
		arguments    map[string]interface{}
		usesFixture  bool
		wantErr      bool
		expectPrefix string
		check        func(t *testing.T, text string)
	}{
		"section_missing": {
			arguments:    map[string]interface{}{"stage": "s3"},
			usesFixture:  true,
			wantErr:      true,
			expectPrefix: "section parameter is required",
		},
		"stage_missing": {
			arguments:    map[string]interface{}{"section": "MAIN-LOGIC"},
			usesFixture:  true,
			wantErr:      true,
			expectPrefix: "stage parameter is required",
		},
		"section_not_found": {
			arguments:    map[string]interface{}{"section": "NO-SUCH-SECTION", "stage": "s3"},
			usesFixture:  true,
			wantErr:      true,
			expectPrefix: "section not found",
		},
		"unknown_stage": {
			arguments:    map[string]interface{}{"section": "MAIN-LOGIC", "stage": "s9"},
			usesFixture:  true,
			wantErr:      true,
			expectPrefix: "dump failed",
		},
		"success_s3": {
			arguments:   map[string]interface{}{"section": "MAIN-LOGIC", "stage": "s3"},
			usesFixture: true,
			check: func(t *testing.T, text string) {
				var result struct {
					Section string `json:"section"`
					Stage   string `json:"stage"`
					Dot     string `json:"dot"`
				}
				require.NoError(t, json.Unmarshal([]byte(text), &result))
				assert.Equal(t, "MAIN-LOGIC", result.Section)
				assert.Equal(t, "s3", result.Stage)
				assert.Contains(t, result.Dot, "digraph")
			},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			h := newHandlerSet(t)

			if tc.usesFixture {
				tc.arguments["path"] = setupFixture(t)
			}

			res, err := h.HandleDumpStage(context.Background(), callReq(tc.arguments))
			require.NoError(t, err)
			require.Greater(t, len(res.Content), 0)
			text := textFromContent(res.Content[0])

			assert.Equal(t, tc.wantErr, res.IsError)
			if tc.expectPrefix != "" {
				assert.True(t, strings.HasPrefix(text, tc.expectPrefix),
					"error text %q does not start with %q", text, tc.expectPrefix)
			}
			if tc.check != nil {
				tc.check(t, text)
			}
		})
	}
}
