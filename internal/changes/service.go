package changes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/changetree/internal/gitrepo"
	"github.com/temirov/changetree/internal/pathtree"
	"github.com/temirov/changetree/internal/report"
)

const (
	noChangedFilesMessageConstant         = "No changed files detected."
	inspectorNotConfiguredMessageConstant = "repository inspector not configured"
	publisherNotConfiguredMessageConstant = "document publisher not configured"
	outputNotConfiguredMessageConstant    = "standard output not configured"
	fetchErrorTemplateConstant            = "fetch remotes: %w"
	repositoryRootErrorTemplateConstant   = "resolve repository: %w"
	changedFilesErrorTemplateConstant     = "list changed files for %s: %w"
	treeBuildErrorTemplateConstant        = "build change tree: %w"
	collectContentsErrorTemplateConstant  = "collect file contents: %w"
	publishErrorTemplateConstant          = "publish report: %w"
	rootLabelJoinTemplateConstant         = "%s/%s"
	changesCollectedLogMessageConstant    = "changed files collected"
	noChangesLogMessageConstant           = "no changed files between branches"
	tokenCountFailedLogMessageConstant    = "token count unavailable"
	tokenCountLogMessageConstant          = "bundle token count"
	collectContentsLogMessageConstant     = "collecting file contents"
	contentsSkippedLogMessageConstant     = "output format omits file contents; skipping collection"
	formatLogFieldConstant                = "format"
	contentSourceLogFieldConstant         = "contents_from"
	repositoryLogFieldConstant            = "repository"
	revisionRangeLogFieldConstant         = "revision_range"
	changedFileCountLogFieldConstant      = "changed_files"
	rootLabelLogFieldConstant             = "root_label"
	runIdentifierLogFieldConstant         = "run_id"
	tokenCountLogFieldConstant            = "tokens"
)

var (
	// ErrInspectorNotConfigured indicates the service was constructed without a repository inspector.
	ErrInspectorNotConfigured = errors.New(inspectorNotConfiguredMessageConstant)
	// ErrPublisherNotConfigured indicates the service was constructed without a publisher.
	ErrPublisherNotConfigured = errors.New(publisherNotConfiguredMessageConstant)
	// ErrOutputNotConfigured indicates the service was constructed without a standard output writer.
	ErrOutputNotConfigured = errors.New(outputNotConfiguredMessageConstant)
)

// RepositoryInspector exposes the git queries the diff command needs.
type RepositoryInspector interface {
	RepositoryRoot(executionContext context.Context, workingDirectory string) (string, error)
	FetchAllRemotes(executionContext context.Context, workingDirectory string) error
	ChangedFiles(executionContext context.Context, workingDirectory string, comparison gitrepo.BranchComparison) ([]string, error)
	ReadRevisionFile(executionContext context.Context, workingDirectory string, revision string, relativePath string) ([]byte, error)
}

// DocumentPublisher delivers a rendered report.
type DocumentPublisher interface {
	Publish(document report.Document, options report.PublishOptions) error
}

// FileReaderFactory returns the reader that loads changed file contents for a run.
type FileReaderFactory func(request FileReaderRequest) report.FileReader

// ServiceDependencies enumerates collaborators required by Service.
type ServiceDependencies struct {
	Inspector         RepositoryInspector
	Publisher         DocumentPublisher
	FileReaderFactory FileReaderFactory
	TokenCounter      report.TokenCounter
	StandardOutput    io.Writer
	Logger            *zap.Logger
}

// Options configures one diff run.
type Options struct {
	WorkingDirectory      string
	Comparison            gitrepo.BranchComparison
	Fetch                 bool
	IncludeContents       bool
	ContentSource         ContentSource
	LabelWithTopDirectory bool
	RootLabel             string
	TreeOptions           pathtree.Options
	MaxParallelReads      int
	GitTimeout            time.Duration
	RunIdentifier         string
	Publish               report.PublishOptions
}

// Result summarizes one diff run.
type Result struct {
	RepositoryRoot string
	ChangedFiles   []string
	Document       report.Document
	Published      bool
}

// Service builds change bundles for branch comparisons.
type Service struct {
	inspector         RepositoryInspector
	publisher         DocumentPublisher
	fileReaderFactory FileReaderFactory
	tokenCounter      report.TokenCounter
	standardOutput    io.Writer
	logger            *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Inspector == nil {
		return nil, ErrInspectorNotConfigured
	}
	if dependencies.Publisher == nil {
		return nil, ErrPublisherNotConfigured
	}
	if dependencies.StandardOutput == nil {
		return nil, ErrOutputNotConfigured
	}

	fileReaderFactory := dependencies.FileReaderFactory
	if fileReaderFactory == nil {
		fileReaderFactory = newDefaultFileReaderFactory(dependencies.Inspector)
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		inspector:         dependencies.Inspector,
		publisher:         dependencies.Publisher,
		fileReaderFactory: fileReaderFactory,
		tokenCounter:      dependencies.TokenCounter,
		standardOutput:    dependencies.StandardOutput,
		logger:            logger,
	}, nil
}

// Run fetches when requested, lists the changed files, builds the tree and
// publishes the bundle. When nothing changed it prints a notice and publishes nothing.
// The git timeout bounds every git call of the run, content reads included.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	logger := service.logger
	if len(options.RunIdentifier) > 0 {
		logger = logger.With(zap.String(runIdentifierLogFieldConstant, options.RunIdentifier))
	}

	if options.GitTimeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, options.GitTimeout)
		defer cancel()
	}

	repositoryRoot, changedFiles, gitError := service.queryRepository(executionContext, options)
	if gitError != nil {
		return Result{}, gitError
	}

	result := Result{RepositoryRoot: repositoryRoot, ChangedFiles: changedFiles}
	if len(changedFiles) == 0 {
		logger.Info(
			noChangesLogMessageConstant,
			zap.String(repositoryLogFieldConstant, repositoryRoot),
			zap.String(revisionRangeLogFieldConstant, options.Comparison.RevisionRange()),
		)
		if _, writeError := fmt.Fprintln(service.standardOutput, noChangedFilesMessageConstant); writeError != nil {
			return Result{}, writeError
		}
		return result, nil
	}

	rootLabel := resolveRootLabel(options, repositoryRoot, changedFiles)
	builder, builderError := pathtree.NewBuilder(options.TreeOptions)
	if builderError != nil {
		return Result{}, fmt.Errorf(treeBuildErrorTemplateConstant, builderError)
	}
	tree, buildError := builder.Build(changedFiles, rootLabel)
	if buildError != nil {
		return Result{}, fmt.Errorf(treeBuildErrorTemplateConstant, buildError)
	}

	logger.Info(
		changesCollectedLogMessageConstant,
		zap.String(repositoryLogFieldConstant, repositoryRoot),
		zap.String(revisionRangeLogFieldConstant, options.Comparison.RevisionRange()),
		zap.Int(changedFileCountLogFieldConstant, len(changedFiles)),
		zap.String(rootLabelLogFieldConstant, rootLabel),
	)

	document := report.NewDocument(tree)
	document.RunID = options.RunIdentifier

	if service.needsContents(logger, options) {
		files, collectError := service.collectContents(executionContext, logger, options, repositoryRoot, changedFiles)
		if collectError != nil {
			return Result{}, collectError
		}
		document.Files = files
	}

	document.TokenCount = service.countTokens(logger, document)

	if publishError := service.publisher.Publish(document, options.Publish); publishError != nil {
		return Result{}, fmt.Errorf(publishErrorTemplateConstant, publishError)
	}

	result.Document = document
	result.Published = true
	return result, nil
}

// needsContents reports whether collected contents would reach the output,
// either in the rendered document or in the markdown bundle that is token counted.
func (service *Service) needsContents(logger *zap.Logger, options Options) bool {
	if !options.IncludeContents {
		return false
	}
	if options.Publish.Format.IncludesFileContents() || service.tokenCounter != nil {
		return true
	}
	logger.Debug(contentsSkippedLogMessageConstant, zap.String(formatLogFieldConstant, string(options.Publish.Format)))
	return false
}

func (service *Service) collectContents(executionContext context.Context, logger *zap.Logger, options Options, repositoryRoot string, changedFiles []string) ([]report.FileContent, error) {
	contentSource := options.ContentSource
	if len(contentSource) == 0 {
		contentSource = ContentSourceHead
	}
	reader := service.fileReaderFactory(FileReaderRequest{
		Source:         contentSource,
		RepositoryRoot: repositoryRoot,
		Revision:       options.Comparison.HeadRevision(),
	})
	logger.Debug(collectContentsLogMessageConstant, zap.String(contentSourceLogFieldConstant, string(contentSource)))

	collector, collectorError := report.NewContentCollector(reader, logger, options.MaxParallelReads)
	if collectorError != nil {
		return nil, fmt.Errorf(collectContentsErrorTemplateConstant, collectorError)
	}
	files, collectError := collector.Collect(executionContext, changedFiles)
	if collectError != nil {
		return nil, fmt.Errorf(collectContentsErrorTemplateConstant, collectError)
	}
	return files, nil
}

// queryRepository runs the fetch, root and diff git steps.
func (service *Service) queryRepository(executionContext context.Context, options Options) (string, []string, error) {
	if options.Fetch {
		if fetchError := service.inspector.FetchAllRemotes(executionContext, options.WorkingDirectory); fetchError != nil {
			return "", nil, fmt.Errorf(fetchErrorTemplateConstant, fetchError)
		}
	}

	repositoryRoot, rootError := service.inspector.RepositoryRoot(executionContext, options.WorkingDirectory)
	if rootError != nil {
		return "", nil, fmt.Errorf(repositoryRootErrorTemplateConstant, rootError)
	}

	changedFiles, changedFilesError := service.inspector.ChangedFiles(executionContext, options.WorkingDirectory, options.Comparison)
	if changedFilesError != nil {
		return "", nil, fmt.Errorf(changedFilesErrorTemplateConstant, options.Comparison.RevisionRange(), changedFilesError)
	}

	return repositoryRoot, changedFiles, nil
}

// countTokens estimates the size of the markdown bundle. Failures are logged and yield zero.
func (service *Service) countTokens(logger *zap.Logger, document report.Document) int {
	if service.tokenCounter == nil {
		return 0
	}

	var bundle bytes.Buffer
	if renderError := (report.MarkdownRenderer{}).Render(&bundle, document); renderError != nil {
		logger.Warn(tokenCountFailedLogMessageConstant, zap.Error(renderError))
		return 0
	}

	tokenCount, countError := service.tokenCounter.CountTokens(bundle.String())
	if countError != nil {
		logger.Warn(tokenCountFailedLogMessageConstant, zap.Error(countError))
		return 0
	}

	logger.Info(tokenCountLogMessageConstant, zap.Int(tokenCountLogFieldConstant, tokenCount))
	return tokenCount
}

// resolveRootLabel prefers an explicit label, then the repository directory
// name, optionally joined with the dominant top-level directory of the changes.
func resolveRootLabel(options Options, repositoryRoot string, changedFiles []string) string {
	rootLabel := strings.TrimSpace(options.RootLabel)
	if len(rootLabel) == 0 {
		rootLabel = gitrepo.RepositoryNameFromRoot(repositoryRoot)
	}
	if !options.LabelWithTopDirectory {
		return rootLabel
	}
	topDirectory, found := pathtree.DominantTopDirectory(changedFiles)
	if !found {
		return rootLabel
	}
	return fmt.Sprintf(rootLabelJoinTemplateConstant, rootLabel, topDirectory)
}
