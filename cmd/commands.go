package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ochronus/gotransloadit/internal/app"
	"github.com/ochronus/gotransloadit/internal/config"
	"github.com/ochronus/gotransloadit/internal/http"
	"github.com/ochronus/gotransloadit/internal/importer"
	"github.com/ochronus/gotransloadit/internal/services/transloadit"
	"github.com/ochronus/gotransloadit/internal/utils"
	"github.com/ochronus/gotransloadit/internal/watch"
	"github.com/spf13/cobra"
)

type assemblyFlags struct {
	params        string
	templateID    string
	notifyURL     string
	expires       time.Duration
	fields        []string
	signature     string
	expectedFiles int
}

func (f *assemblyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.params, "params", "", "Assembly params as JSON, or @file to read them from a file")
	cmd.Flags().StringVar(&f.templateID, "template", "", "Template id, overrides template_id from the config")
	cmd.Flags().StringVar(&f.notifyURL, "notify-url", "", "Notification URL, overrides notify_url from the config")
	cmd.Flags().DurationVar(&f.expires, "expires", 0, "Set auth.expires this far in the future")
	cmd.Flags().StringArrayVar(&f.fields, "field", nil, "Extra form field as key=value (repeatable)")
	cmd.Flags().StringVar(&f.signature, "signature", "", "Request signature for params")
}

// options turns the flags into AssemblyOptions, filling params from the config
func (f *assemblyFlags) options(cfg *config.Config) (transloadit.AssemblyOptions, error) {
	base, err := utils.ReadArgument(f.params)
	if err != nil {
		return transloadit.AssemblyOptions{}, err
	}

	paramsOpts := transloadit.ParamsOptions{
		AuthKey:    cfg.Auth.Key,
		TemplateID: firstNonEmpty(f.templateID, cfg.TemplateID),
		NotifyURL:  firstNonEmpty(f.notifyURL, cfg.NotifyURL),
	}
	if f.expires > 0 {
		paramsOpts.Expires = time.Now().Add(f.expires)
	}

	params, err := transloadit.BuildParams(base, paramsOpts)
	if err != nil {
		return transloadit.AssemblyOptions{}, err
	}

	fields, err := utils.ParseKeyValues(f.fields)
	if err != nil {
		return transloadit.AssemblyOptions{}, err
	}

	return transloadit.AssemblyOptions{
		Params:        params,
		Fields:        fields,
		Signature:     f.signature,
		ExpectedFiles: f.expectedFiles,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *cli) createCmd() *cobra.Command {
	var flags assemblyFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an assembly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container()
			if err != nil {
				return err
			}

			opts, err := flags.options(container.Config)
			if err != nil {
				return err
			}

			assembly, err := container.Client.CreateAssembly(cmd.Context(), opts)
			if err != nil {
				var creationErr *transloadit.AssemblyCreationError
				if errors.As(err, &creationErr) && len(creationErr.Response) > 0 {
					_ = c.print(container, creationErr.Response)
				}
				return err
			}
			container.Logger.Infof("assembly %s created", assembly.ID())
			return c.print(container, assembly.Response)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&flags.expectedFiles, "expected-files", 0, "Number of files that will be added to the assembly")

	return cmd
}

func (c *cli) reserveCmd() *cobra.Command {
	var name string
	var size int64

	cmd := &cobra.Command{
		Use:   "reserve <assembly-url>",
		Short: "Reserve capacity for a file in an assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container()
			if err != nil {
				return err
			}

			resp, err := container.Client.ReserveFile(cmd.Context(),
				transloadit.AssemblyRef{SSLURL: args[0]},
				transloadit.FileRef{Name: name, Size: size})
			if err != nil {
				return err
			}
			return c.print(container, resp)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "File name")
	cmd.Flags().Int64Var(&size, "size", 0, "File size in bytes")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}

func (c *cli) addFileCmd() *cobra.Command {
	var name, uploadURL string
	var size int64

	cmd := &cobra.Command{
		Use:   "add-file <assembly-url>",
		Short: "Register an already uploaded file with an assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container()
			if err != nil {
				return err
			}

			resp, err := container.Client.AddFile(cmd.Context(),
				transloadit.AssemblyRef{SSLURL: args[0]},
				transloadit.FileRef{Name: name, Size: size, UploadURL: uploadURL})
			if err != nil {
				return err
			}
			return c.print(container, resp)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "File name")
	cmd.Flags().Int64Var(&size, "size", 0, "File size in bytes")
	cmd.Flags().StringVar(&uploadURL, "url", "", "URL the file was uploaded to")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func (c *cli) cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <assembly-url>",
		Short: "Cancel an assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container()
			if err != nil {
				return err
			}

			resp, err := container.Client.CancelAssembly(cmd.Context(), transloadit.AssemblyRef{SSLURL: args[0]})
			if err != nil {
				return err
			}
			return c.print(container, resp)
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <status-url>",
		Short: "Fetch the status of an assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container()
			if err != nil {
				return err
			}

			resp, err := container.Client.GetAssemblyStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(container, resp)
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <status-url>",
		Short: "Poll an assembly until it completes, fails or is canceled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := c.container()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.waitAndPrint(ctx, watch.NewWatcher(container), container, args[0])
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	var flags assemblyFlags
	var files []string
	var wait bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create an assembly and import remote files into it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(files) == 0 {
				return fmt.Errorf("at least one --file is required")
			}

			remote := make([]importer.RemoteFile, 0, len(files))
			for _, spec := range files {
				f, err := importer.ParseRemoteFile(spec)
				if err != nil {
					return err
				}
				remote = append(remote, f)
			}

			container, err := c.container()
			if err != nil {
				return err
			}

			opts, err := flags.options(container.Config)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			assembly, results, err := importer.NewImporter(container).CreateAndImport(ctx, opts, remote)
			if assembly == nil {
				return err
			}
			for _, r := range results {
				if r.Err != nil {
					container.Logger.Warnf("%s: %s: %v", r.File, r.Status, r.Err)
				}
			}
			if err != nil {
				return err
			}

			if !wait {
				return c.print(container, assembly.Response)
			}
			statusURL := assembly.SSLURL()
			if statusURL == "" {
				return transloadit.ErrMissingStatusURL
			}
			return c.waitAndPrint(ctx, watch.NewWatcher(container), container, statusURL)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Remote file as name=url or url (repeatable)")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the assembly to finish and print its final status")

	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Receive assembly notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			container, err := c.container()
			if err != nil {
				return err
			}

			container.Logger.Infof("Starting gotransloadit, version %s", version)

			server := http.NewServer(container)
			return server.StartWithContext(ctx)
		},
	}
}

func (c *cli) waitAndPrint(ctx context.Context, w *watch.Watcher, container *app.Container, statusURL string) error {
	resp, err := w.Wait(ctx, statusURL)
	var failed *watch.FailedError
	if err != nil && !errors.As(err, &failed) {
		return err
	}
	if printErr := c.print(container, resp); printErr != nil {
		return printErr
	}
	return err
}
