package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ivision/config"
	app "ivision/internal/application"
	"ivision/internal/domain/entity"
	"ivision/internal/infrastructure/imageio"
	"ivision/internal/infrastructure/report"
)

// outputOptions куда и в каком виде выводить результат
type outputOptions struct {
	output string
	format string
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write results to a file, format guessed from its suffix (.txt, .csv, .json, .yaml)")
	cmd.Flags().StringVar(&o.format, "format", string(report.FormatText), "stdout format: text, csv, table, json, yaml")
}

func newOCRCmd(opts *globalOptions) *cobra.Command {
	var (
		out       outputOptions
		fast      bool
		words     bool
		noCorrect bool
		languages []string
	)

	cmd := &cobra.Command{
		Use:     "ocr FILE",
		Aliases: []string{"o"},
		Short:   "Recognize text in an image",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyze(cmd, opts, args[0], entity.CapabilityOCR, out, func(cfg *config.Config) app.RunOptions {
				ocr := entity.OCROptions{
					Languages:          cfg.Languages,
					LanguageCorrection: !noCorrect,
					Fast:               fast,
				}
				if len(languages) > 0 {
					ocr.Languages = languages
				}
				return app.RunOptions{OCR: ocr, Words: words}
			})
		},
	}

	out.register(cmd)
	cmd.Flags().BoolVarP(&fast, "fast", "f", false, "use the fast recognition level")
	cmd.Flags().BoolVarP(&words, "words", "w", false, "output words instead of lines")
	cmd.Flags().BoolVarP(&noCorrect, "no-correct", "n", false, "disable language correction")
	cmd.Flags().StringSliceVarP(&languages, "lang", "l", nil, "recognition languages, in priority order")

	return cmd
}

func newTextCmd(opts *globalOptions) *cobra.Command {
	var out outputOptions

	cmd := &cobra.Command{
		Use:   "text FILE",
		Short: "Detect text regions without recognizing them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyze(cmd, opts, args[0], entity.CapabilityText, out, nil)
		},
	}
	out.register(cmd)

	return cmd
}

func newClassifyCmd(opts *globalOptions) *cobra.Command {
	var (
		out  outputOptions
		topK int
	)

	cmd := &cobra.Command{
		Use:   "classify FILE",
		Short: "Classify an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if topK < 0 {
				return fmt.Errorf("--top must not be negative, got %d", topK)
			}
			return analyze(cmd, opts, args[0], entity.CapabilityClassify, out, func(*config.Config) app.RunOptions {
				return app.RunOptions{TopK: topK}
			})
		},
	}
	out.register(cmd)
	cmd.Flags().IntVarP(&topK, "top", "k", 0, "keep only the K most confident labels (0 keeps all)")

	return cmd
}

func newObjectsCmd(opts *globalOptions) *cobra.Command {
	var out outputOptions

	cmd := &cobra.Command{
		Use:   "objects FILE",
		Short: "Detect objects in an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyze(cmd, opts, args[0], entity.CapabilityObjects, out, nil)
		},
	}
	out.register(cmd)

	return cmd
}

func newAnnotateCmd(opts *globalOptions) *cobra.Command {
	var (
		capability string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "annotate FILE",
		Short: "Draw detected regions on top of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := entity.ParseCapability(capability)
			if err != nil {
				return err
			}
			if !c.HasBoxes() {
				return fmt.Errorf("%s produces no regions to draw", c)
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			services, err := buildContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer services.Close()

			img, err := services.AnalysisService.Load(args[0])
			if err != nil {
				return err
			}

			result, err := services.AnalysisService.Run(cmd.Context(), img, c, app.RunOptions{OCR: ocrDefaults(cfg)})
			if err != nil {
				return err
			}

			decoded, err := imageio.Decode(img)
			if err != nil {
				return err
			}
			annotated, err := report.Annotate(decoded, result)
			if err != nil {
				return err
			}
			if err := report.SaveImage(output, annotated); err != nil {
				return err
			}

			slog.Info("annotated image saved", "path", output, "regions", result.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&capability, "capability", "c", string(entity.CapabilityOCR), "request whose regions are drawn: text, ocr, objects")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output image (.png, .jpg)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// analyze выполняет один запрос и выводит результат в файл или stdout.
func analyze(cmd *cobra.Command, opts *globalOptions, path string, c entity.Capability, out outputOptions, runOptions func(*config.Config) app.RunOptions) error {
	// Формат проверяем до обращения к движку
	format, err := out.resolve()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	services, err := buildContainer(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer services.Close()

	img, err := services.AnalysisService.Load(path)
	if err != nil {
		return err
	}

	run := app.RunOptions{OCR: ocrDefaults(cfg)}
	if runOptions != nil {
		run = runOptions(cfg)
	}

	result, err := services.AnalysisService.Run(cmd.Context(), img, c, run)
	if err != nil {
		return err
	}

	if out.output != "" {
		return report.WriteFile(out.output, result)
	}
	return report.Render(cmd.OutOrStdout(), result, format)
}

// resolve проверяет формат вывода: для файла по расширению, иначе по --format.
func (o outputOptions) resolve() (report.Format, error) {
	if o.output != "" {
		return report.FormatFromPath(o.output)
	}
	return report.ParseFormat(o.format)
}

func ocrDefaults(cfg *config.Config) entity.OCROptions {
	ocr := entity.DefaultOCROptions()
	if len(cfg.Languages) > 0 {
		ocr.Languages = cfg.Languages
	}
	return ocr
}
