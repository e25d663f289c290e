package main

import (
	"fmt"
	"text/tabwriter"

	"estate_backend/internal/services/dto"

	"github.com/spf13/cobra"
)

func newMediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Поиск и замена битых ссылок на изображения",
	}
	cmd.AddCommand(newMediaScanCmd(), newMediaRepairCmd())
	return cmd
}

func newMediaScanCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Показать записи, чьи изображения отсутствуют",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(true)
			if err != nil {
				return err
			}
			defer e.close()

			items, err := e.components.Services.MediaRepairService.ScanBroken(cmd.Context(), e.db, category)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tFIELD\tPATH")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.ID, item.Title, item.Field, item.Path)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d broken in %s\n", len(items), category)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "blog, property, profile_picture или service")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newMediaRepairCmd() *cobra.Command {
	var category, defaultImage string

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Заменить битые ссылки категории на изображение по умолчанию",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := load(true)
			if err != nil {
				return err
			}
			defer e.close()

			result, err := e.components.Services.MediaRepairService.RepairCategory(cmd.Context(), e.db, &dto.RepairRequest{
				Category:     category,
				DefaultImage: defaultImage,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: scanned %d, broken %d, repaired %d, failed %d\n",
				result.Category, result.Scanned, result.Broken, result.Repaired, result.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "blog, property, profile_picture или service")
	cmd.Flags().StringVar(&defaultImage, "default", "", "путь изображения-замены в хранилище или public")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("default")
	return cmd
}
