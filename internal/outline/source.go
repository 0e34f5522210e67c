package outline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	standardInputArgumentConstant     = "-"
	maximumPathLineBytesConstant      = 1 << 20
	initialPathBufferBytesConstant    = 64 * 1024
	pathListReadErrorTemplateConstant = "read path list %s: %w"
	standardInputSourceNameConstant   = "from standard input"
	carriageReturnConstant            = "\r"
)

// PathSource gathers the input paths of one tree invocation.
type PathSource struct {
	// PathsFile names a file holding one path per line. It is read first.
	PathsFile string
	// Arguments are literal paths; "-" splices in standard input at that position.
	Arguments []string
	// ReadStandardInput reads standard input when no other source is given.
	ReadStandardInput bool
}

// Collect reads every source in order. Blank lines in path lists separate
// entries and are not paths; literal arguments are kept verbatim.
func (source PathSource) Collect(standardInput io.Reader) ([]string, error) {
	paths := make([]string, 0, len(source.Arguments))

	if len(source.PathsFile) > 0 {
		filePaths, fileError := readPathsFile(source.PathsFile)
		if fileError != nil {
			return nil, fileError
		}
		paths = append(paths, filePaths...)
	}

	standardInputConsumed := false
	for _, argument := range source.Arguments {
		if argument != standardInputArgumentConstant {
			paths = append(paths, argument)
			continue
		}
		if standardInputConsumed {
			continue
		}
		standardInputConsumed = true
		inputPaths, inputError := ReadPathList(standardInput, standardInputSourceNameConstant)
		if inputError != nil {
			return nil, inputError
		}
		paths = append(paths, inputPaths...)
	}

	if source.ReadStandardInput && !standardInputConsumed && len(source.Arguments) == 0 && len(source.PathsFile) == 0 {
		inputPaths, inputError := ReadPathList(standardInput, standardInputSourceNameConstant)
		if inputError != nil {
			return nil, inputError
		}
		paths = append(paths, inputPaths...)
	}

	return paths, nil
}

// ReadPathList reads newline-separated paths from reader. sourceName only labels errors.
func ReadPathList(reader io.Reader, sourceName string) ([]string, error) {
	if reader == nil {
		return nil, nil
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, initialPathBufferBytesConstant), maximumPathLineBytesConstant)

	paths := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), carriageReturnConstant)
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		paths = append(paths, line)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(pathListReadErrorTemplateConstant, sourceName, scanError)
	}
	return paths, nil
}

func readPathsFile(pathsFile string) ([]string, error) {
	file, openError := os.Open(pathsFile)
	if openError != nil {
		return nil, fmt.Errorf(pathListReadErrorTemplateConstant, pathsFile, openError)
	}
	defer file.Close()
	return ReadPathList(file, pathsFile)
}

// standardInputIsPiped reports whether reader is a non-terminal file such as a pipe or redirect.
func standardInputIsPiped(reader io.Reader) bool {
	file, isFile := reader.(*os.File)
	if !isFile {
		return false
	}
	fileInfo, statError := file.Stat()
	if statError != nil {
		return false
	}
	return fileInfo.Mode()&os.ModeCharDevice == 0
}
