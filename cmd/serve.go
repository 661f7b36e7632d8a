package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/adolog/internal/config"
	"github.com/Tiliavir/adolog/internal/logserver"
)

var (
	serveAddr  string
	serveStore string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the time log service used by the rest backend",
	Long: `Run an HTTP service implementing /api/getLogs, /api/addLog and /api/updateLog.
Logs are kept in SQLite (default) or in one JSON file per day under the data dir.
The daily limit is checked by clients, not by this service.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, localhost:8080)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "Storage: sqlite or files (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	addr := orDefault(serveAddr, a.cfg.Server.Addr)
	kind := orDefault(serveStore, a.cfg.Server.Store)

	store, err := openLogStore(kind, a.cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	a.log.Info("log service starting", "addr", addr, "store", kind)
	return logserver.NewServer(addr, store, a.log).Run(cmd.Context())
}

func openLogStore(kind, dataDir string) (logserver.Store, error) {
	switch kind {
	case config.StoreSQLite:
		return logserver.OpenSQLite(filepath.Join(dataDir, "logserver.db"))
	case config.StoreFiles:
		return logserver.NewFileStore(filepath.Join(dataDir, "logs")), nil
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
