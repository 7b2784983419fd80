package batch

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/ensayos/internal/entity"
)

// resultSchema is the shape every extraction response must have.
const resultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["informe", "informe_elemento"],
  "properties": {
    "informe": {
      "type": "object",
      "required": ["numero_ensayo", "cliente", "fecha_recepcion", "fecha_inicio", "fecha_termino"],
      "properties": {
        "numero_ensayo":   {"type": "string"},
        "cliente":         {"type": "string"},
        "fecha_recepcion": {"type": "string"},
        "fecha_inicio":    {"type": "string"},
        "fecha_termino":   {"type": "string"}
      }
    },
    "informe_elemento": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["numero_ensayo", "elemento", "nombre", "unidad", "ley"],
        "properties": {
          "numero_ensayo": {"type": "string"},
          "elemento":      {"type": "string"},
          "nombre":        {"type": "string"},
          "unidad":        {"type": "string"},
          "ley":           {"type": "number"}
        }
      }
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("result.json", strings.NewReader(resultSchema)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("result.json")
	})
	return compiledSchema, compileErr
}

// ValidateResult checks a decoded JSON value against the result schema.
func ValidateResult(v any) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// decodeResponse accepts an object or a list (first element wins), validates
// it and decodes it into a result.
func decodeResponse(body []byte) (entity.ExtractionResult, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return entity.ExtractionResult{}, fmt.Errorf("unmarshal: %w", err)
	}
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return entity.ExtractionResult{}, fmt.Errorf("empty list")
		}
		v = list[0]
	}
	if err := ValidateResult(v); err != nil {
		return entity.ExtractionResult{}, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	var res entity.ExtractionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return entity.ExtractionResult{}, err
	}
	if res.InformeElemento == nil {
		res.InformeElemento = []entity.InformeElemento{}
	}
	return res, nil
}
