package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/climadash/sink"
)

func newPushCmd(a *app) *cobra.Command {
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Write the filtered rows to InfluxDB",
		Long: `Writes one point per row: tag country, one field per indicator,
timestamped January 1 of the row's year (UTC).

Connection settings come from the influx config section or
INFLUXDB_URL, INFLUXDB_TOKEN, INFLUXDB_ORG and INFLUXDB_BUCKET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, closeFn, err := sink.Connect(a.cfg.Influx, sink.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer closeFn()

			t, err := a.loadTable()
			if err != nil {
				return err
			}
			f, err := filters.resolve(cmd, t.Bounds())
			if err != nil {
				return err
			}

			n, err := pub.Publish(cmd.Context(), t.Filter(f))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d points to %s/%s\n", n, a.cfg.Influx.Org, a.cfg.Influx.Bucket)
			return nil
		},
	}
	filters.register(cmd)
	return cmd
}
