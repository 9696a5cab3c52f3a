package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/reporte/internal/attachment"
	"github.com/dharsanguruparan/reporte/internal/model"
	"github.com/dharsanguruparan/reporte/internal/payload"
	"github.com/dharsanguruparan/reporte/internal/s3storage"
	"github.com/dharsanguruparan/reporte/internal/server"
	"github.com/dharsanguruparan/reporte/internal/submit"
	"github.com/dharsanguruparan/reporte/internal/verification"
)

func newCodeCmd() *cobra.Command {
	var lf linkFlags
	var canonical bool
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Print the verification code for a report link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := lf.params(cmd)
			if err != nil {
				return err
			}
			if canonical {
				fmt.Fprintln(cmd.OutOrStdout(), verification.Canonical(params.Metadata))
			}
			fmt.Fprintln(cmd.OutOrStdout(), verification.Code(params.Metadata))
			return nil
		},
	}
	lf.register(cmd)
	cmd.Flags().BoolVar(&canonical, "canonical", false, "Also print the normalized string that is hashed")
	return cmd
}

func newLinkCmd() *cobra.Command {
	var lf linkFlags
	var base string
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Build a report link for a technician and print its code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := lf.params(cmd)
			if err != nil {
				return err
			}
			if !params.SubmitEnabled() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: the link has no valid POSTURL; submission will be disabled")
			}
			sep := "?"
			if strings.Contains(base, "?") {
				sep = "&"
			}
			fmt.Fprintln(cmd.OutOrStdout(), base+sep+params.Values().Encode())
			fmt.Fprintln(cmd.OutOrStdout(), "code:", verification.Code(params.Metadata))
			return nil
		},
	}
	lf.register(cmd)
	cmd.Flags().StringVar(&base, "base", "http://localhost:8080/", "Address of the report form")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var lf linkFlags
	var out string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty report template as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := lf.params(cmd)
			if err != nil {
				return err
			}
			doc, err := payload.Template(params.Metadata, time.Now())
			if err != nil {
				return fmt.Errorf("render template: %w", err)
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(doc)
				return err
			}
			if err := os.WriteFile(out, doc, 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "template written to", out)
			return nil
		},
	}
	lf.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", payload.TemplateFilename, `Output file ("-" for stdout)`)
	return cmd
}

func newSubmitCmd() *cobra.Command {
	var lf linkFlags
	var formPath, code string
	images := map[model.Category]*[]string{
		model.CategoryAntes:   new([]string),
		model.CategoryDurante: new([]string),
		model.CategoryDespues: new([]string),
	}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate a filled form and post it with its photos",
		Long: `submit reads the form state from a JSON file, attaches the photos given per
category (local paths or s3://bucket/key references) and posts the report once.
The file may also be a filled template from "reporte template"; its metadata
only fills parameters that neither the link nor the flags provide.
Validation problems are listed and nothing is sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			params, err := lf.params(cmd)
			if err != nil {
				return err
			}
			doc, err := readFormFile(formPath)
			if err != nil {
				return err
			}
			form := doc.Form
			if doc.Metadata != nil {
				params.Metadata = fillMetadata(params.Metadata, doc.Metadata.RequestMetadata)
			}
			if cmd.Flags().Changed("code") {
				form.CodigoVerificacion = code
			}

			var store *s3storage.Storage
			var loaded []model.ImageAttachment
			for _, c := range model.Categories {
				sources := make([]attachment.Source, 0, len(*images[c]))
				for _, ref := range *images[c] {
					if !s3storage.IsRef(ref) {
						sources = append(sources, attachment.File{Path: ref})
						continue
					}
					if store == nil {
						if !cfg.S3Enabled() {
							return fmt.Errorf("%s: REPORTE_S3_ENDPOINT is not configured", ref)
						}
						if store, err = s3storage.New(cfg); err != nil {
							return err
						}
					}
					obj, err := store.Object(ref)
					if err != nil {
						return err
					}
					sources = append(sources, obj)
				}
				imgs, err := attachment.Load(ctx, c, sources...)
				if err != nil {
					return err
				}
				loaded = append(loaded, imgs...)
			}

			sub, err := payload.Build(params, form, loaded)
			if err != nil {
				return err
			}
			res, err := submit.New(cfg.SubmitTimeout).Send(ctx, sub)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
			if !res.Sent {
				return fmt.Errorf("submission not delivered (request %s)", res.RequestID)
			}
			body := res.Body
			if body == "" {
				body = "<sin contenido>"
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)
			if res.Truncated {
				fmt.Fprintf(cmd.ErrOrStderr(), "respuesta truncada a %d bytes\n", submit.MaxResponseBytes)
			}
			return nil
		},
	}
	lf.register(cmd)
	cmd.Flags().StringVar(&formPath, "form", "", "JSON file with the form state")
	cmd.Flags().StringVar(&code, "code", "", "Verification code (overrides the one in the form file)")
	cmd.Flags().StringArrayVar(images[model.CategoryAntes], "antes", nil, "Photo taken before the service (repeatable)")
	cmd.Flags().StringArrayVar(images[model.CategoryDurante], "durante", nil, "Photo taken during the service (repeatable)")
	cmd.Flags().StringArrayVar(images[model.CategoryDespues], "despues", nil, "Photo taken after the service (repeatable)")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the form backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(cfg, submit.New(cfg.SubmitTimeout))
			return srv.Run(cmd.Context())
		},
	}
}

func readFormFile(path string) (payload.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return payload.Document{}, fmt.Errorf("open form: %w", err)
	}
	defer f.Close()
	doc, err := payload.DecodeDocument(f)
	if err != nil {
		return payload.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// fillMetadata completes the empty fields of meta from the file's copy.
func fillMetadata(meta, fromFile model.RequestMetadata) model.RequestMetadata {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = strings.TrimSpace(src)
		}
	}
	fill(&meta.ID, fromFile.ID)
	fill(&meta.Ciudad, fromFile.Ciudad)
	fill(&meta.NIT, fromFile.NIT)
	fill(&meta.NombreEmpresa, fromFile.NombreEmpresa)
	return meta
}
