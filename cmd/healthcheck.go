package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	infraerrors "github.com/Davis1233798/note/infrastructure/errors"
	infrahttp "github.com/Davis1233798/note/infrastructure/http"
	"github.com/Davis1233798/note/internal/config"
	"github.com/spf13/cobra"
)

// healthcheckTimeout bounds the whole probe, connect included.
const healthcheckTimeout = 2 * time.Second

// probeHost is where a container probe reaches the server it runs beside.
const probeHost = "127.0.0.1"

func newHealthcheckCommand(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe the running server's health endpoint",
		Long: `Probe GET /api/health on the local server and exit 0 on 200.
Configuration is loaded the same way as for serving, so PORT is honoured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgFile)
			if err != nil {
				return err
			}
			return probeHealth(cmd.Context(), healthURL(cfg.Service.Port), cmd.OutOrStdout())
		},
	}
}

func healthURL(port int) string {
	return "http://" + net.JoinHostPort(probeHost, strconv.Itoa(port)) + config.DefaultHealthPath
}

// probeHealth GETs url and fails unless the answer is 200. The body is copied
// to out.
func probeHealth(ctx context.Context, url string, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, healthcheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	client := infrahttp.NewClient(&infrahttp.ClientConfig{
		Timeout:           healthcheckTimeout,
		DisableKeepAlives: true,
	})

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: %w", infraerrors.FromResponse(resp))
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("read health response: %w", err)
	}
	_, _ = fmt.Fprintln(out)
	return nil
}
