package ecmare

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/coregx/ecmare/nfa"
)

type corpusCase struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Flags   string `yaml:"flags"`
	Subject string `yaml:"subject"`
	Want    []int  `yaml:"want"`
	Error   string `yaml:"error"`
}

var corpusErrorKinds = map[string]nfa.ErrorKind{
	"escape":    nfa.ErrorEscape,
	"backref":   nfa.ErrorBackref,
	"brack":     nfa.ErrorBrack,
	"paren":     nfa.ErrorParen,
	"brace":     nfa.ErrorBrace,
	"badbrace":  nfa.ErrorBadBrace,
	"range":     nfa.ErrorRange,
	"space":     nfa.ErrorSpace,
	"badrepeat": nfa.ErrorBadRepeat,
	"property":  nfa.ErrorProperty,
}

func loadCorpus(t *testing.T) []corpusCase {
	t.Helper()
	data, err := os.ReadFile("testdata/corpus.yaml")
	require.NoError(t, err)
	var cases []corpusCase
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)
	return cases
}

func TestCorpus(t *testing.T) {
	for _, tc := range loadCorpus(t) {
		t.Run(tc.Name, func(t *testing.T) {
			flags, err := ParseFlags(tc.Flags)
			require.NoError(t, err)

			// Accelerators must not change results, so every case runs
			// with and without them.
			plain := DefaultConfig()
			plain.EnablePrefilter = false
			plain.EnableBMH = false
			plain.EnableLiteralSet = false

			for _, config := range []struct {
				name string
				cfg  func() (*Regex, error)
			}{
				{"default", func() (*Regex, error) { return CompileFlags(tc.Pattern, flags) }},
				{"plain", func() (*Regex, error) { return CompileWithConfig(tc.Pattern, flags, plain) }},
			} {
				re, err := config.cfg()
				if tc.Error != "" {
					kind, ok := corpusErrorKinds[tc.Error]
					require.True(t, ok, "unknown error kind %q", tc.Error)
					require.Error(t, err)
					assert.ErrorIs(t, err, kind, config.name)
					continue
				}
				require.NoError(t, err, config.name)
				assert.Equal(t, tc.Want, re.FindStringSubmatchIndex(tc.Subject), config.name)
			}
		})
	}
}
