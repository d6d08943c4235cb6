package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-map/internal/domain"
	"github.com/couchcryptid/hazard-map/internal/session"
)

func newReportCmd() *cobra.Command {
	var (
		lat, lng   float64
		hazardType string
		notes      string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report a hazard at a location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, ok := domain.ParseHazardType(hazardType); !ok {
				return fmt.Errorf("unknown hazard type %q", hazardType)
			}
			cfg, logger, metrics, err := loadCLI()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			provider, ok := newIdentity(cfg, logger)
			if !ok {
				return errors.New("reporting requires AUTH_STATIC_TOKEN or AUTH_TOKEN_URL")
			}
			errOut := cmd.ErrOrStderr()
			sess := session.New(session.Deps{
				Store:       newStore(cfg, metrics, logger),
				Identity:    provider,
				Audience:    cfg.AuthAudience,
				InitialView: initialView(cfg),
				Notifier: session.NotifierFunc(func(n session.Notice) {
					fmt.Fprintf(errOut, "[%s] %s\n", n.Level, n.Message)
				}),
				Logger:  logger,
				Metrics: metrics,
			})
			if !provider.IsAuthenticated() {
				if err := sess.Login(ctx); err != nil {
					return fmt.Errorf("login: %w", err)
				}
			}
			if err := sess.Start(ctx); err != nil {
				return fmt.Errorf("load hazards: %w", err)
			}

			if err := sess.Handle(ctx, session.Event{Type: session.EventViewportChange, Lat: lat, Lng: lng, Zoom: cfg.InitialZoom}); err != nil {
				return err
			}
			if err := sess.EnterReporting(); err != nil {
				return err
			}
			sess.SelectHazardType(hazardType)
			sess.SetNotes(notes)

			sub, err := sess.Submit(ctx)
			if err != nil {
				return fmt.Errorf("submit: %w", err)
			}
			sess.Wait()
			if err := sub.Err(); err != nil {
				return fmt.Errorf("submit: %w", err)
			}

			created := sub.Created()
			fmt.Fprintf(cmd.OutOrStdout(), "reported %s at %.4f, %.4f (id %s)\n", created.Type.Label(), created.Lat, created.Lng, created.ID)
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of the hazard")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude of the hazard")
	cmd.Flags().StringVar(&hazardType, "type", domain.DefaultHazardType.String(), "hazard type (FLOODED_ROAD, TREE_DOWN, OTHER)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text notes, kept only for OTHER")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}
