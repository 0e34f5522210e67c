package outline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/changetree/internal/pathtree"
	"github.com/temirov/changetree/internal/report"
)

const (
	publisherNotConfiguredMessageConstant = "document publisher not configured"
	treeBuildErrorTemplateConstant        = "build path tree: %w"
	publishErrorTemplateConstant          = "publish outline: %w"
	treeBuiltLogMessageConstant           = "path tree built"
	pathCountLogFieldConstant             = "paths"
	fileCountLogFieldConstant             = "files"
	directoryCountLogFieldConstant        = "directories"
	rootLabelLogFieldConstant             = "root_label"
	runIdentifierLogFieldConstant         = "run_id"
)

// ErrPublisherNotConfigured indicates the service was constructed without a publisher.
var ErrPublisherNotConfigured = errors.New(publisherNotConfiguredMessageConstant)

// DocumentPublisher delivers a rendered report.
type DocumentPublisher interface {
	Publish(document report.Document, options report.PublishOptions) error
}

// ServiceDependencies enumerates collaborators required by Service.
type ServiceDependencies struct {
	Publisher DocumentPublisher
	Logger    *zap.Logger
}

// Options configures one tree rendering.
type Options struct {
	Paths         []string
	RootLabel     string
	TreeOptions   pathtree.Options
	RunIdentifier string
	Publish       report.PublishOptions
}

// Service builds and publishes path outlines.
type Service struct {
	publisher DocumentPublisher
	logger    *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Publisher == nil {
		return nil, ErrPublisherNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{publisher: dependencies.Publisher, logger: logger}, nil
}

// Render builds the tree for options.Paths and publishes it.
func (service *Service) Render(options Options) (report.Document, error) {
	builder, builderError := pathtree.NewBuilder(options.TreeOptions)
	if builderError != nil {
		return report.Document{}, fmt.Errorf(treeBuildErrorTemplateConstant, builderError)
	}

	tree, buildError := builder.Build(options.Paths, options.RootLabel)
	if buildError != nil {
		return report.Document{}, fmt.Errorf(treeBuildErrorTemplateConstant, buildError)
	}

	document := report.NewDocument(tree)
	document.RunID = options.RunIdentifier

	service.logger.Debug(
		treeBuiltLogMessageConstant,
		zap.String(runIdentifierLogFieldConstant, options.RunIdentifier),
		zap.String(rootLabelLogFieldConstant, document.RootLabel),
		zap.Int(pathCountLogFieldConstant, len(options.Paths)),
		zap.Int(fileCountLogFieldConstant, document.FileCount),
		zap.Int(directoryCountLogFieldConstant, document.DirectoryCount),
	)

	if publishError := service.publisher.Publish(document, options.Publish); publishError != nil {
		return report.Document{}, fmt.Errorf(publishErrorTemplateConstant, publishError)
	}
	return document, nil
}
