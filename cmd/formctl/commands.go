package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/reglet-forms/component"
	"github.com/reglet-dev/reglet-forms/httpapi"
	"github.com/reglet-dev/reglet-forms/render/terminal"
)

type targetFlags struct {
	subtype string
	item    string
}

func (t *targetFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.subtype, "subtype", "", "object subtype, e.g. page")
	cmd.Flags().StringVar(&t.item, "item", "", "item id the values belong to")
}

func newExportCommand(rf *rootFlags) *cobra.Command {
	var tf targetFlags
	cmd := &cobra.Command{
		Use:   "export <object-type>",
		Short: "Print the prepared components of a namespace as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, rf)
			if err != nil {
				return err
			}
			defer a.Close()

			payload, err := a.forms.Export(cmd.Context(), args[0], tf.subtype, tf.item)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}
	tf.bind(cmd)
	return cmd
}

func newRenderCommand(rf *rootFlags) *cobra.Command {
	var tf targetFlags
	cmd := &cobra.Command{
		Use:   "render <object-type> <container-id>",
		Short: "Render a prepared screen or section as HTML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, rf)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.forms.Render(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], tf.subtype, tf.item)
		},
	}
	tf.bind(cmd)
	return cmd
}

func newTreeCommand(rf *rootFlags) *cobra.Command {
	var tf targetFlags
	cmd := &cobra.Command{
		Use:   "tree <object-type>",
		Short: "Show the prepared component tree of a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, rf)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.forms.Prepare(args[0], tf.subtype)
			if err != nil {
				return err
			}
			writeTree(cmd.OutOrStdout(), p)
			return nil
		},
	}
	tf.bind(cmd)
	return cmd
}

func newEditCommand(rf *rootFlags) *cobra.Command {
	var (
		tf         targetFlags
		accessible bool
	)
	cmd := &cobra.Command{
		Use:   "edit <object-type> <container-id>",
		Short: "Edit the values of a prepared screen or section in the terminal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, rf)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.forms.Prepare(args[0], tf.subtype)
			if err != nil {
				return err
			}
			c, ok := p.Container(args[1])
			if !ok {
				return fmt.Errorf("%q is not a prepared container of %s", args[1], p.Namespace)
			}

			editor := terminal.NewEditor(
				terminal.WithAccessible(accessible),
				terminal.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
			)
			if !editor.IsInteractive() {
				return editor.FormatNonInteractiveError(c)
			}

			rc := component.RenderContext{ObjectType: args[0], ObjectSubtype: tf.subtype, ItemID: tf.item}
			report, err := editor.Edit(cmd.Context(), c, rc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d, rejected %d\n", len(report.Saved), len(report.Rejected))
			for _, id := range report.Rejected {
				fmt.Fprintf(cmd.OutOrStdout(), "  rejected: %s\n", id)
			}
			return nil
		},
	}
	tf.bind(cmd)
	cmd.Flags().BoolVar(&accessible, "accessible", false, "use screen-reader friendly prompts")
	return cmd
}

func newServeCommand(rf *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve prepared forms and field values over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, rf)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           httpapi.NewServer(a.forms, httpapi.WithLogger(a.logger)).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("listening", "addr", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8080)")
	return cmd
}
