package prediction

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed contract.yaml
var contractYAML []byte

const (
	recordSchemaName   = "PredictionRecord"
	responseSchemaName = "PredictionResponse"
)

// Contract is the predictor's OpenAPI description. Records are validated
// against it before they leave the process and responses when they return.
type Contract struct {
	doc      *openapi3.T
	record   *openapi3.Schema
	response *openapi3.Schema
}

var (
	defaultContractOnce sync.Once
	defaultContract     *Contract
	defaultContractErr  error
)

// DefaultContract returns the embedded predictor contract, parsed once.
func DefaultContract() (*Contract, error) {
	defaultContractOnce.Do(func() {
		defaultContract, defaultContractErr = LoadContract(context.Background(), contractYAML)
	})
	return defaultContract, defaultContractErr
}

// ContractDocument returns the raw embedded contract.
func ContractDocument() []byte {
	return append([]byte(nil), contractYAML...)
}

// LoadContract parses and validates an OpenAPI document that declares the
// PredictionRecord and PredictionResponse schemas.
func LoadContract(ctx context.Context, data []byte) (*Contract, error) {
	if len(data) == 0 {
		return nil, errors.New("prediction: contract document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("prediction: load contract: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("prediction: validate contract: %w", err)
	}
	if doc.Components == nil {
		return nil, errors.New("prediction: contract has no components")
	}

	record, err := schemaNamed(doc, recordSchemaName)
	if err != nil {
		return nil, err
	}
	response, err := schemaNamed(doc, responseSchemaName)
	if err != nil {
		return nil, err
	}
	return &Contract{doc: doc, record: record, response: response}, nil
}

// Document exposes the parsed OpenAPI document.
func (c *Contract) Document() *openapi3.T {
	return c.doc
}

// ValidateRecord checks a record against the PredictionRecord schema.
func (c *Contract) ValidateRecord(rec Record) []ContractIssue {
	value, err := toJSONValue(rec)
	if err != nil {
		return []ContractIssue{{Message: err.Error()}}
	}
	return visit(c.record, value)
}

// ValidateResponse checks a decoded predictor response body against the
// PredictionResponse schema.
func (c *Contract) ValidateResponse(body any) []ContractIssue {
	return visit(c.response, body)
}

func schemaNamed(doc *openapi3.T, name string) (*openapi3.Schema, error) {
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("prediction: contract is missing schema %q", name)
	}
	return ref.Value, nil
}

func visit(schema *openapi3.Schema, value any) []ContractIssue {
	err := schema.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		issues := make([]ContractIssue, 0, len(multi))
		for _, item := range multi {
			issues = append(issues, issueFromError(item))
		}
		return issues
	}
	return []ContractIssue{issueFromError(err)}
}

func issueFromError(err error) ContractIssue {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return ContractIssue{
			Field:   strings.Join(schemaErr.JSONPointer(), "."),
			Message: strings.TrimSpace(schemaErr.Reason),
		}
	}
	return ContractIssue{Message: strings.TrimSpace(err.Error())}
}

func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("prediction: encode record: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("prediction: decode record: %w", err)
	}
	return out, nil
}
