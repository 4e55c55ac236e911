package metadata

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/emrgen/metadata/internal/lookup"
	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/store"
)

var (
	ErrRequired       = errors.New("This metadata is required for this document type.")
	ErrNotLookupValue = errors.New("Value is not one of the provided options.")
)

// Resolver answers the questions forms ask about a metadata type: whether it
// is required, what its choices and default are, and whether a value passes.
type Resolver struct {
	relationships store.RelationshipStore
	evaluator     lookup.Evaluator
	pipeline      *Pipeline
}

func NewResolver(relationships store.RelationshipStore, evaluator lookup.Evaluator, pipeline *Pipeline) *Resolver {
	if pipeline == nil {
		pipeline = NewPipeline()
	}

	return &Resolver{
		relationships: relationships,
		evaluator:     evaluator,
		pipeline:      pipeline,
	}
}

func (r *Resolver) Evaluator() lookup.Evaluator {
	return r.evaluator
}

func (r *Resolver) Pipeline() *Pipeline {
	return r.pipeline
}

// RequiredFor reports whether metadataType is required for documentType.
func (r *Resolver) RequiredFor(ctx context.Context, metadataType *model.MetadataType, documentType *model.DocumentType) (bool, error) {
	if metadataType == nil || documentType == nil {
		return false, nil
	}
	return r.relationships.IsRequired(ctx, documentType.ID, metadataType.ID)
}

func (r *Resolver) LookupValues(ctx context.Context, metadataType *model.MetadataType) ([]string, error) {
	return r.evaluator.Choices(ctx, metadataType.Lookup)
}

func (r *Resolver) DefaultValue(ctx context.Context, metadataType *model.MetadataType) (string, error) {
	return r.evaluator.Value(ctx, metadataType.Default)
}

// ValidateValue runs value through the metadata type rules and returns the
// value to store: the default fills an empty value, lookup types only accept
// their choices, then the validator and the parser apply.
func (r *Resolver) ValidateValue(ctx context.Context, documentType *model.DocumentType, metadataType *model.MetadataType, value string) (string, error) {
	if value == "" && metadataType.Default != "" {
		def, err := r.DefaultValue(ctx, metadataType)
		if err != nil {
			return "", fmt.Errorf("default value error: %w", err)
		}
		value = def
	}

	if value == "" {
		required, err := r.RequiredFor(ctx, metadataType, documentType)
		if err != nil {
			return "", err
		}
		if required {
			return "", ErrRequired
		}
	}

	if metadataType.Lookup != "" && value != "" {
		choices, err := r.LookupValues(ctx, metadataType)
		if err != nil {
			return "", fmt.Errorf("lookup value error: %w", err)
		}
		if !slices.Contains(choices, value) {
			return "", ErrNotLookupValue
		}
	}

	if metadataType.Validation != "" {
		if err := r.pipeline.Validate(metadataType.Validation, value); err != nil {
			return "", err
		}
	}

	if metadataType.Parser != "" {
		parsed, err := r.pipeline.Parse(metadataType.Parser, value)
		if err != nil {
			return "", err
		}
		value = parsed
	}

	return value, nil
}
