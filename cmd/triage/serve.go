package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tabeebchat/triage/internal/artifact"
	"github.com/tabeebchat/triage/internal/common"
	"github.com/tabeebchat/triage/internal/config"
	"github.com/tabeebchat/triage/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the triage engine over HTTP",
		Long: `Load the frozen artifacts and serve the inference API.

The snapshot is loaded once before the listener starts; the process
refuses to serve if any artifact is missing or inconsistent. SIGHUP
rebuilds the snapshot from the configured paths and swaps it in
atomically without dropping in-flight requests.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8090", "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, err := loadEngine(ctx, nil)
	if err != nil {
		return err
	}

	addr := viper.GetString("server.addr")
	srv := server.New(eng, addr)

	// Artifact refresh: rebuild out-of-band, swap atomically. Readers in
	// flight keep the snapshot they started with.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				slog.Info("Reloading artifacts on SIGHUP")
				paths, pathErr := config.ArtifactPaths()
				if pathErr != nil {
					slog.Error("Reload aborted", "error", pathErr)
					continue
				}
				snap, loadErr := artifact.Loader{}.Load(ctx, paths)
				if loadErr != nil {
					slog.Error("Reload failed, keeping current snapshot", "error", loadErr)
					continue
				}
				eng.Swap(snap)
				common.LogInfo("Snapshot swapped", common.Fields{
					"records":    snap.Index.Size(),
					"categories": len(snap.Categories()),
				})
			}
		}
	}()

	slog.Info("Serving triage API", "addr", addr)
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
