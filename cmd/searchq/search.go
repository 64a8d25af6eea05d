package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/oxhq/searchq"
	"github.com/oxhq/searchq/core"
	"github.com/oxhq/searchq/dsl"
)

var (
	flagQueryFile string
	flagWhere     string
	flagInput     string
	flagModel     string
	flagOrder     []string
	flagLimit     int
	flagOffset    int
	flagStream    bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Execute a query against the database or JSON record files",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := loadQuery()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if flagInput != "" {
			records, err := loadRecords(flagInput)
			if err != nil {
				return err
			}
			results, err := searchq.Search(ctx, records, nil, q)
			if err != nil {
				return err
			}
			return enc.Encode(results)
		}

		session, err := openSession()
		if err != nil {
			return err
		}
		model, err := modelByName(flagModel)
		if err != nil {
			return err
		}
		if flagStream {
			stream, err := searchq.SearchStream(ctx, session, model, q)
			if err != nil {
				return err
			}
			defer stream.Close()
			for stream.Next(ctx) {
				if err := enc.Encode(stream.Record()); err != nil {
					return err
				}
			}
			return stream.Err()
		}
		results, err := searchq.Search(ctx, session, model, q)
		if err != nil {
			return err
		}
		return enc.Encode(results)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, explainCmd, validateCmd} {
		cmd.Flags().StringVarP(&flagQueryFile, "query", "q", "", "JSON query document file (- for stdin)")
		cmd.Flags().StringVarP(&flagWhere, "where", "w", "", "textual condition expression")
		cmd.Flags().StringSliceVar(&flagOrder, "order", nil, "order keys, prefix with - for descending")
		cmd.Flags().IntVar(&flagLimit, "limit", -1, "maximum records to return")
		cmd.Flags().IntVar(&flagOffset, "offset", -1, "records to skip")
		cmd.Flags().StringVarP(&flagModel, "model", "m", "tasks", "root model for SQL queries")
	}
	searchCmd.Flags().StringVarP(&flagInput, "input", "i", "", "glob of JSON record files for the memory backend")
	searchCmd.Flags().BoolVar(&flagStream, "stream", false, "stream records instead of materializing")
	rootCmd.AddCommand(searchCmd)
}

// loadQuery builds the query from --query or --where plus the shared
// ordering and paging flags.
func loadQuery() (*core.Query, error) {
	var q *core.Query
	switch {
	case flagQueryFile != "" && flagWhere != "":
		return nil, fmt.Errorf("--query and --where are mutually exclusive")
	case flagQueryFile != "":
		data, err := readInput(flagQueryFile)
		if err != nil {
			return nil, err
		}
		q, err = core.ParseQuery(data)
		if err != nil {
			return nil, err
		}
	case flagWhere != "":
		var err error
		q, err = dsl.Parse(flagWhere)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("pass a query with --query or --where")
	}

	for _, key := range flagOrder {
		q.OrderBy = append(q.OrderBy, core.ParseOrderKey(key))
	}
	if flagLimit >= 0 {
		limit := flagLimit
		q.Limit = &limit
	}
	if flagOffset >= 0 {
		offset := flagOffset
		q.Offset = &offset
	}
	return q, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return os.ReadFile("/dev/stdin")
	}
	return os.ReadFile(path)
}

// loadRecords reads every JSON file matching the glob. A file may hold
// one record object or an array of records.
func loadRecords(pattern string) ([]core.Record, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}
	var records []core.Record
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var many []core.Record
		if err := json.Unmarshal(data, &many); err == nil {
			records = append(records, many...)
			continue
		}
		var one core.Record
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("%s: not a record or record array: %w", path, err)
		}
		records = append(records, one)
	}
	return records, nil
}
