package cli_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/changetree/cmd/cli"
	"github.com/temirov/changetree/internal/changes"
	"github.com/temirov/changetree/internal/pathtree"
	"github.com/temirov/changetree/internal/report"
)

const (
	embeddedDefaultRemoteNameConstant       = "origin"
	embeddedDefaultBaseBranchConstant       = "main"
	embeddedDefaultMaxParallelReadsConstant = 8
	embeddedDefaultTokenEncodingConstant    = "cl100k_base"
)

func TestEmbeddedDefaultConfigurationDecodes(testInstance *testing.T) {
	configuration := decodeEmbeddedApplicationConfiguration(testInstance)

	testCases := []struct {
		name      string
		assertion func(testing.TB, cli.ApplicationConfiguration)
	}{
		{
			name: "common_defaults",
			assertion: func(assertionTarget testing.TB, configuration cli.ApplicationConfiguration) {
				assertions := require.New(assertionTarget)
				assertions.Equal("info", configuration.Common.LogLevel)
				assertions.Equal("console", configuration.Common.LogFormat)
			},
		},
		{
			name: "tree_defaults",
			assertion: func(assertionTarget testing.TB, configuration cli.ApplicationConfiguration) {
				sanitized := configuration.Tree.Sanitize()

				assertions := require.New(assertionTarget)
				assertions.Empty(sanitized.RootLabel)
				assertions.Equal(pathtree.EmptySegmentPolicySkip, sanitized.EmptySegments)
				assertions.Equal(pathtree.RootLabelModeLiteral, sanitized.RootLabelMode)
				assertions.Equal(string(report.FormatText), sanitized.Format)
				assertions.False(sanitized.CopyToClipboard)
			},
		},
		{
			name: "diff_defaults",
			assertion: func(assertionTarget testing.TB, configuration cli.ApplicationConfiguration) {
				sanitized := configuration.Diff.Sanitize()

				assertions := require.New(assertionTarget)
				assertions.Equal(embeddedDefaultRemoteNameConstant, sanitized.RemoteName)
				assertions.Equal(embeddedDefaultBaseBranchConstant, sanitized.BaseBranch)
				assertions.True(sanitized.Fetch)
				assertions.True(sanitized.IncludeContents)
				assertions.Equal(string(changes.ContentSourceHead), sanitized.ContentsFrom)
				assertions.False(sanitized.LabelWithTopDirectory)
				assertions.Equal(string(report.FormatMarkdown), sanitized.Format)
				assertions.Equal(embeddedDefaultMaxParallelReadsConstant, sanitized.MaxParallelReads)
				assertions.Equal(2*time.Minute, sanitized.GitTimeout)
				assertions.False(sanitized.CountTokens)
				assertions.Equal(embeddedDefaultTokenEncodingConstant, sanitized.TokenEncoding)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(t *testing.T) {
			testCase.assertion(t, configuration)
		})
	}
}

func TestEmbeddedDefaultConfigurationReturnsCopy(t *testing.T) {
	firstData, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(t, firstData)
	firstData[0] = '#'

	secondData, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(t, "yaml", configurationType)
	require.NotEqual(t, byte('#'), secondData[0])
}

func decodeEmbeddedApplicationConfiguration(testingInstance testing.TB) cli.ApplicationConfiguration {
	testingInstance.Helper()

	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)

	readError := viperInstance.ReadConfig(bytes.NewReader(configurationData))
	require.NoError(testingInstance, readError)

	var configuration cli.ApplicationConfiguration
	unmarshalError := viperInstance.Unmarshal(&configuration)
	require.NoError(testingInstance, unmarshalError)

	return configuration
}
