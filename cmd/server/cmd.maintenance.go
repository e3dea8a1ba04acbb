package main

import (
	"context"
	"encoding/json"

	analyticsmodels "barfer_analytics/internal/api/analytics/models"
	"barfer_analytics/internal/database"
	"barfer_analytics/internal/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newBackfillCmd() *cobra.Command {
	var orderType string
	cmd := &cobra.Command{
		Use:   "backfill-order-type",
		Short: "Set orderType on orders that do not have it yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(envFile)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.Background()) }()

			res, err := a.analytics.BackfillOrderType(cmd.Context(), orderType)
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&orderType, "type", analyticsmodels.DefaultOrderType, "orderType value to assign")
	return cmd
}

func newEnsureIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create or update the indexes declared on the Order model",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(envFile)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.Background()) }()

			col, err := a.db.Collection(cmd.Context(), a.cfg.MongoDB_ColOrders)
			if err != nil {
				return err
			}
			changed, err := database.CreateIndexes(cmd.Context(), col, analyticsmodels.Order{})
			if err != nil {
				return err
			}
			logger.GetAppLogger().WithFields(logrus.Fields{
				"collection": a.cfg.MongoDB_ColOrders,
				"changed":    changed,
			}).Info("Indexes ensured")
			return writeJSON(cmd, map[string]any{"collection": a.cfg.MongoDB_ColOrders, "changed": changed})
		},
	}
}

// writeJSON in kết quả dạng JSON có thụt lề ra stdout của command
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
