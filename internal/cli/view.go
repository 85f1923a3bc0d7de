package cli

import (
	"context"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"drawing-viewer/internal/app"
	"drawing-viewer/internal/drawing"
	"drawing-viewer/ui/mainwindow"
	"drawing-viewer/ui/prefs"
)

func newViewCmd(o *options) *cobra.Command {
	var (
		drawingID  string
		discipline string
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the drawing viewer window",
		Example: `  # Open the project next to metadata.json
  drawing-viewer view --metadata ./project/metadata.json

  # Open drawing 01 directly
  drawing-viewer view --drawing 01 --discipline 건축`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			s, err := openSession(ctx, o.cfg, o.logger)
			if err != nil {
				return err
			}
			defer s.Close()

			fyneApp := fyneapp.NewWithID("dev.drawing-viewer")
			fyneApp.Settings().SetTheme(&app.ViewerTheme{})

			p := prefs.Load()
			win := mainwindow.New(ctx, fyneApp, s.viewer, s.renderer, p, o.logger.Named("ui"))

			if err := s.viewer.LoadTree(ctx); err != nil {
				o.logger.Warn("starting without a drawing tree", zap.Error(err))
			}

			switch {
			case drawingID != "":
				win.Select(drawing.Selection{DrawingID: drawingID, Discipline: discipline})
			case win.RestoreLastSelection():
			default:
				win.Select(drawing.Selection{DrawingID: drawing.SitePlanID, Discipline: drawing.AllDisciplines})
			}

			if o.cfg.WatchInterval > 0 {
				if w := watchMetadata(ctx, s, o.cfg.Metadata, o.cfg.WatchInterval); w != nil {
					defer w.Stop()
				}
			}

			win.ShowAndRun()
			return nil
		},
	}

	cmd.Flags().StringVarP(&drawingID, "drawing", "d", "", "drawing to open")
	cmd.Flags().StringVar(&discipline, "discipline", drawing.AllDisciplines, "discipline of --drawing")

	return cmd
}
