// Package swagger serves the API contract and a Swagger UI page for it.
package swagger

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	apicontract "github.com/namjco/sales-tracker/api-contract"
)

const (
	UIPath   = "/docs"
	YAMLPath = "/docs/openapi.yml"
	JSONPath = "/docs/openapi.json"
)

// Register serves the UI, the embedded YAML contract and its JSON rendering
// from the loaded document.
func Register(r chi.Router, doc *openapi3.T) error {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal openapi doc: %w", err)
	}

	page := []byte(uiPage(doc.Info.Title, YAMLPath))
	yamlBytes := apicontract.GetSpecBytes()

	r.Get(UIPath, serveBytes("text/html; charset=utf-8", page))
	r.Get(YAMLPath, serveBytes("application/yaml", yamlBytes))
	r.Get(JSONPath, serveBytes("application/json", jsonBytes))

	return nil
}

func serveBytes(contentType string, b []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(b)
	}
}

func uiPage(title, specPath string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>%s</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.29.3/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({ url: '%s', dom_id: '#swagger-ui', deepLinking: true });
  };
</script>
</body>
</html>
`, html.EscapeString(title), specPath)
}
