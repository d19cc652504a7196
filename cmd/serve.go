package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/lernpath/internal/obslog"
	"github.com/abhisek/lernpath/internal/server"
	"github.com/abhisek/lernpath/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP tutoring API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		eng, err := buildEngine(ctx, cmd, st)
		if err != nil {
			return err
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = viper.GetString("addr")
		}

		srv := server.New(eng, st, obslog.GetLogger(), server.Config{Addr: addr})
		return srv.Serve(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", `Listen address (default ":8080")`)
}
