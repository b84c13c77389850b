package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jengzang/opportunity-map-go/internal/database"
	"github.com/jengzang/opportunity-map-go/internal/logging"
	"github.com/jengzang/opportunity-map-go/internal/mapviz"
	"github.com/jengzang/opportunity-map-go/internal/models"
	"github.com/jengzang/opportunity-map-go/internal/service"
)

func newColorCmd() *cobra.Command {
	var (
		minValue, maxValue float64
		rank               bool
	)

	cmd := &cobra.Command{
		Use:   "color VALUE",
		Short: "Print the marker color for an amount",
		Long: "Print the marker color for an amount such as \"$1.2M\" placed linearly\n" +
			"between --min and --max. With --rank, VALUE is a rank fraction in [0,1].",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rank {
				var f float64
				if _, err := fmt.Sscanf(args[0], "%g", &f); err != nil {
					return fmt.Errorf("rank fraction %q: %w", args[0], err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), mapviz.ColorForRank(f))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), mapviz.ColorForEntityValue(mapviz.RawValue(args[0]), minValue, maxValue))
			return nil
		},
	}

	cmd.Flags().Float64Var(&minValue, "min", 0, "lower end of the value scale")
	cmd.Flags().Float64Var(&maxValue, "max", mapviz.OpenEndedMax, "upper end of the value scale")
	cmd.Flags().BoolVar(&rank, "rank", false, "treat VALUE as a rank fraction")
	return cmd
}

// fixture is the file format read by the cluster command
type fixture struct {
	Entities []models.MapEntity `json:"entities" yaml:"entities"`
}

func newClusterCmd() *cobra.Command {
	var (
		file     string
		kind     string
		minValue float64
		maxValue float64
		spacing  float64
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster and color a JSON or YAML fixture of entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind != "" && !models.ValidKind(kind) {
				return fmt.Errorf("unknown kind %q", kind)
			}
			entities, err := loadFixture(file)
			if err != nil {
				return err
			}

			filter := models.ClusterFilter{Kind: kind, MinValue: &minValue, MaxValue: &maxValue}
			if kind != "" {
				entities = filterKind(entities, kind)
			}
			if !cmd.Flags().Changed("spacing") {
				if cliCtx, err := GetCLIContext(cmd); err == nil {
					spacing = cliCtx.Config.Map.Spacing
				}
			}
			return printJSON(cmd, service.BuildClusters(entities, filter, spacing))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "fixture path (.json, .yaml or .yml)")
	f.StringVar(&kind, "kind", "", "only cluster entities of this kind")
	f.Float64Var(&minValue, "min-value", 0, "lowest amount to include")
	f.Float64Var(&maxValue, "max-value", mapviz.OpenEndedMax, "highest amount to include; the default means no upper bound")
	f.Float64Var(&spacing, "spacing", mapviz.DefaultSpacing, "degrees between spread markers")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func loadFixture(path string) ([]models.MapEntity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	var fx fixture
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fx)
	case ".json":
		err = json.Unmarshal(data, &fx)
	default:
		return nil, fmt.Errorf("unsupported fixture format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}

	for i := range fx.Entities {
		if fx.Entities[i].Kind == "" {
			fx.Entities[i].Kind = models.KindOpportunity
		}
		fx.Entities[i].Normalize()
	}
	return fx.Entities, nil
}

func filterKind(entities []models.MapEntity, kind string) []models.MapEntity {
	out := entities[:0:0]
	for _, e := range entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			conn, err := database.Open(database.Config{Path: cliCtx.Config.Database.Path})
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := database.Migrate(cmd.Context(), conn, cliCtx.Logger); err != nil {
				return err
			}
			cliCtx.Logger.Info("schema up to date", logging.String("path", cliCtx.Config.Database.Path))
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
