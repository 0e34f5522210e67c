package utils_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/changetree/internal/utils"
)

const (
	testLogMessageConstant   = "logger factory message"
	testDebugMessageConstant = "logger factory debug message"
)

func TestLoggerFactoryCreateLogger(t *testing.T) {
	testCases := []struct {
		name              string
		logLevel          utils.LogLevel
		logFormat         utils.LogFormat
		expectStructured  bool
		expectDebugRecord bool
	}{
		{
			name:              "debug_structured",
			logLevel:          utils.LogLevelDebug,
			logFormat:         utils.LogFormatStructured,
			expectStructured:  true,
			expectDebugRecord: true,
		},
		{
			name:      "info_console",
			logLevel:  utils.LogLevelInfo,
			logFormat: utils.LogFormatConsole,
		},
		{
			name:             "mixed_case_names",
			logLevel:         utils.LogLevel(" INFO "),
			logFormat:        utils.LogFormat("Structured"),
			expectStructured: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var destination bytes.Buffer
			loggerFactory := utils.NewLoggerFactoryWithDestination(zapcore.AddSync(&destination))

			logger, creationError := loggerFactory.CreateLogger(testCase.logLevel, testCase.logFormat)
			require.NoError(t, creationError)

			logger.Debug(testDebugMessageConstant)
			logger.Info(testLogMessageConstant)
			require.NoError(t, logger.Sync())

			output := strings.TrimSpace(destination.String())
			require.Contains(t, output, testLogMessageConstant)
			require.Equal(t, testCase.expectDebugRecord, strings.Contains(output, testDebugMessageConstant))

			for _, line := range strings.Split(output, "\n") {
				require.Equal(t, testCase.expectStructured, json.Valid([]byte(line)), line)
			}
		})
	}
}

func TestLoggerFactoryConsoleFormatUsesCapitalLevels(t *testing.T) {
	var destination bytes.Buffer
	logger, creationError := utils.NewLoggerFactoryWithDestination(zapcore.AddSync(&destination)).
		CreateLogger(utils.LogLevelWarn, utils.LogFormatConsole)
	require.NoError(t, creationError)

	logger.Info(testLogMessageConstant)
	logger.Warn(testLogMessageConstant)
	require.NoError(t, logger.Sync())

	output := destination.String()
	require.Equal(t, 1, strings.Count(output, testLogMessageConstant))
	require.Contains(t, output, "WARN")
}

func TestLoggerFactoryRejectsUnsupportedValues(t *testing.T) {
	testCases := []struct {
		name          string
		logLevel      utils.LogLevel
		logFormat     utils.LogFormat
		expectedError string
	}{
		{
			name:          "unsupported_level",
			logLevel:      utils.LogLevel("verbose"),
			logFormat:     utils.LogFormatStructured,
			expectedError: "unsupported log level: verbose",
		},
		{
			name:          "unsupported_format",
			logLevel:      utils.LogLevelInfo,
			logFormat:     utils.LogFormat("xml"),
			expectedError: "unsupported log format: xml",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			logger, creationError := utils.NewLoggerFactory().CreateLogger(testCase.logLevel, testCase.logFormat)
			require.EqualError(t, creationError, testCase.expectedError)
			require.Nil(t, logger)
		})
	}
}

func TestLogChoicesMatchAcceptedNames(t *testing.T) {
	for _, logLevel := range utils.LogLevelChoices() {
		_, creationError := utils.NewLoggerFactory().CreateLogger(utils.LogLevel(logLevel), utils.LogFormatStructured)
		require.NoError(t, creationError, logLevel)
	}
	for _, logFormat := range utils.LogFormatChoices() {
		_, creationError := utils.NewLoggerFactory().CreateLogger(utils.LogLevelInfo, utils.LogFormat(logFormat))
		require.NoError(t, creationError, logFormat)
	}
}
