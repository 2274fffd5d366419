package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stakequorum/consensus-oracle/internal/config"
	"github.com/stakequorum/consensus-oracle/internal/consensus"
	"github.com/stakequorum/consensus-oracle/internal/db"
	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/types"
)

func ImportOperatorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-operators [file]",
		Short: "Imports operator records from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE:  importOperators,
	}

	return cmd
}

type operatorImport struct {
	OperatorID  string `json:"operator_id"`
	State       string `json:"state"`
	Reliability uint64 `json:"reliability"`
}

func importOperators(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var operators []operatorImport
	if err := json.Unmarshal(data, &operators); err != nil {
		return fmt.Errorf("failed to parse operators file: %w", err)
	}

	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		return err
	}

	for _, op := range operators {
		operatorState, err := types.OperatorStateFromString(op.State)
		if err != nil {
			return fmt.Errorf("operator %q: %w", op.OperatorID, err)
		}
		if op.Reliability > consensus.BasisPointsDivisor {
			return fmt.Errorf("operator %q: reliability %d exceeds %d", op.OperatorID, op.Reliability, consensus.BasisPointsDivisor)
		}

		operator := model.NewOperatorDocument(op.OperatorID, operatorState, op.Reliability)
		if err := dbClient.UpsertOperator(ctx, operator); err != nil {
			return fmt.Errorf("operator %q: %w", op.OperatorID, err)
		}

		fmt.Printf("Operator %q imported\n", op.OperatorID)
	}

	fmt.Printf("Imported %d operators\n", len(operators))
	return nil
}
