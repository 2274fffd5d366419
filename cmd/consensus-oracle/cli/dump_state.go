package cli

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/stakequorum/consensus-oracle/internal/config"
	"github.com/stakequorum/consensus-oracle/internal/db"
)

func DumpStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump-state [pool-id]",
		Short: "Dumps a pool's stored oracle state",
		Args:  cobra.ExactArgs(1),
		RunE:  dumpState,
	}

	return cmd
}

func dumpState(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		return err
	}

	poolID := args[0]

	oracleCfg, err := dbClient.GetOracleConfig(ctx, poolID)
	switch {
	case db.IsNotFoundError(err):
		fmt.Printf("No oracle config for pool %q\n", poolID)
	case err != nil:
		return err
	default:
		spew.Dump(oracleCfg)
	}

	state, err := dbClient.GetConsensusState(ctx, poolID)
	switch {
	case db.IsNotFoundError(err):
		fmt.Printf("No consensus snapshot for pool %q\n", poolID)
	case err != nil:
		return err
	default:
		spew.Dump(state)
	}

	history, err := dbClient.GetPriceHistory(ctx, poolID, int64(cfg.Oracle.HistoryWindow))
	if err != nil {
		return err
	}

	fmt.Printf("Price history (%d points):\n", len(history))
	spew.Dump(history)

	return nil
}
