package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikichat/internal/adapters/driven/filewatch"
	"github.com/custodia-labs/wikichat/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/logger"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web chat",
	Long: `Start the HTTP chat server.

GET / serves the chat page; POST / answers the form field "question".
Each browser gets its own conversation through a session cookie.

With --watch, the vector index is reloaded whenever its file changes, so
a concurrent "wikichat ingest" is picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", domain.DefaultServerAddr, "listen address")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the index when it changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	addr := serveAddr
	indexPath := domain.DefaultIndexPath
	if settings := currentSettings(); settings != nil {
		if !cmd.Flags().Changed("addr") && settings.Server.Addr != "" {
			addr = settings.Server.Addr
		}
		if settings.Index.Path != "" {
			indexPath = settings.Index.Path
		}
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Chat:      chatService,
		Retrieval: retrievalService,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if serveWatch {
		if err := watchIndex(ctx, indexPath); err != nil {
			return err
		}
	}

	cmd.Printf("Serving on http://localhost%s\n", addr)
	return server.Run(ctx, addr)
}

// watchIndex reloads the retrieval index each time the file at path is
// rewritten. It returns once the watcher is running.
func watchIndex(ctx context.Context, path string) error {
	retrieval := retrievalService
	if retrieval == nil {
		return errors.New("retrieval service not configured")
	}

	w, err := filewatch.New(path, filewatch.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("watching index: %w", err)
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching index: %w", err)
	}

	go func() {
		for change := range changes {
			if change.Type == filewatch.ChangeRemoved {
				logger.Warn("Vector index %s removed; keeping the loaded index", change.Path)
				continue
			}
			if err := retrieval.Reload(ctx); err != nil {
				logger.Error("Reloading vector index: %v", err)
				continue
			}
			logger.Info("Reloaded vector index %s (%d chunks)", change.Path, retrieval.Size())
		}
	}()

	logger.Info("Watching %s for changes", w.Path())
	return nil
}
