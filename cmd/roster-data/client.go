package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/hotelstaff/roster/modules/roster/infrastructure/rosterapi"
)

const defaultBaseURL = "http://localhost:3200"

type clientOptions struct {
	baseURL   string
	authToken string
}

func (o *clientOptions) bind(cmd *cobra.Command) {
	baseURL := os.Getenv("ROSTER_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	cmd.Flags().StringVar(&o.baseURL, "base-url", baseURL, "Roster API base URL (env ROSTER_BASE_URL)")
	cmd.Flags().StringVar(&o.authToken, "auth-token", os.Getenv("ROSTER_AUTH_TOKEN"), "Authorization header value (env ROSTER_AUTH_TOKEN)")
}

func (o *clientOptions) client() (*rosterapi.Client, error) {
	var opts []rosterapi.Option
	if token := strings.TrimSpace(o.authToken); token != "" {
		if !strings.Contains(token, " ") {
			token = "Bearer " + token
		}
		opts = append(opts, rosterapi.WithAuthorization(token))
	}
	c, err := rosterapi.New(o.baseURL, opts...)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	return c, nil
}

// classify assigns an exit code to an API failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *rosterapi.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusUnsupportedMediaType,
			http.StatusUnprocessableEntity, http.StatusConflict, http.StatusRequestEntityTooLarge:
			return withCode(exitValidation, err)
		}
	}
	return withCode(exitService, err)
}
