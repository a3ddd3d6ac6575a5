package graphql

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/Demonism0/blog-api/internal/service"
)

type gqlHandler struct {
	svc    *service.Service
	logger *slog.Logger

	schema graphql.Schema
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

func New(svc *service.Service, logger *slog.Logger) (*gqlHandler, error) {
	gh := &gqlHandler{
		svc:    svc,
		logger: logger,
	}

	if err := gh.initSchema(); err != nil {
		return nil, err
	}

	return gh, nil
}

func (gh *gqlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		gh.reject(w, http.StatusMethodNotAllowed, "graphql requests must be sent with POST")
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gh.logger.Debug("bad graphql request", "error", err)
		gh.reject(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Query == "" {
		gh.reject(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	res := graphql.Do(graphql.Params{
		Context:        r.Context(),
		Schema:         gh.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
	})
	gh.write(w, http.StatusOK, res)
}

func (gh *gqlHandler) reject(w http.ResponseWriter, status int, msg string) {
	gh.write(w, status, &graphql.Result{
		Errors: []gqlerrors.FormattedError{{Message: msg}},
	})
}

func (gh *gqlHandler) write(w http.ResponseWriter, status int, res *graphql.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		gh.logger.Error("failed to write graphql response", "error", err)
	}
}
