package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kamensky/folio/internal/api"
	"github.com/kamensky/folio/internal/client"
	"github.com/kamensky/folio/internal/convert"
	"github.com/kamensky/folio/internal/model"
	"github.com/kamensky/folio/internal/sync"
)

// resourceDef adapts one collection to the shared command set.
type resourceDef[M any] struct {
	use       string
	short     string
	store     func(*client.Client) sync.Store[M]
	opts      sync.Options[M]
	decode    func([]byte) (M, error)
	header    string
	row       func(M) string
	filterKey string
}

func (d resourceDef[M]) command() *cobra.Command {
	cmd := &cobra.Command{Use: d.use, Short: d.short}

	var page, limit int
	var search, filter string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + d.use,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := sync.New(d.store(newClient()), d.opts)
			q := sync.Query{Page: page, Limit: limit, Search: search}
			if filter != "" && d.filterKey != "" {
				q.Filter = url.Values{d.filterKey: {filter}}
			}
			<-ctrl.SetQuery(cmd.Context(), q)
			if err := ctrl.Err(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, d.header)
			for _, m := range ctrl.Items() {
				fmt.Fprintln(w, d.row(m))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", ctrl.Total())
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "page number")
	listCmd.Flags().IntVar(&limit, "limit", sync.DefaultLimit, "page size")
	listCmd.Flags().StringVar(&search, "search", "", "text search")
	if d.filterKey != "" {
		listCmd.Flags().StringVar(&filter, "filter", "", d.filterKey+" filter")
	}

	addCmd := &cobra.Command{
		Use:   "add <json>",
		Short: "Create from a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := d.decode([]byte(args[0]))
			if err != nil {
				return err
			}
			ctrl := sync.New(d.store(newClient()), d.opts)
			created, err := ctrl.Create(cmd.Context(), m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", d.opts.ID(created))
			return nil
		},
	}

	editCmd := &cobra.Command{
		Use:   "edit <json>",
		Short: "Rewrite the full payload by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := d.decode([]byte(args[0]))
			if err != nil {
				return err
			}
			ctrl := sync.New(d.store(newClient()), d.opts)
			if err := ctrl.Update(cmd.Context(), m); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "updated")
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := sync.New(d.store(newClient()), d.opts)
			<-ctrl.SetQuery(cmd.Context(), sync.Query{Limit: sync.MaxLimit})
			if err := ctrl.Err(); err != nil {
				return err
			}
			if err := ctrl.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, editCmd, rmCmd)

	if d.opts.ExclusiveActive {
		activateCmd := &cobra.Command{
			Use:   "activate <id>",
			Short: "Make this the single active entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctrl := sync.New(d.store(newClient()), d.opts)
				<-ctrl.SetQuery(cmd.Context(), sync.Query{Limit: sync.MaxLimit})
				if err := ctrl.Err(); err != nil {
					return err
				}
				if err := ctrl.SetExclusiveActive(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "activated")
				return nil
			},
		}
		cmd.AddCommand(activateCmd)
	}

	return cmd
}

func decodeRow[R any, M any](from func(R) M) func([]byte) (M, error) {
	return func(b []byte) (M, error) {
		var r R
		if err := json.Unmarshal(b, &r); err != nil {
			var zero M
			return zero, fmt.Errorf("payload: %w", err)
		}
		return from(r), nil
	}
}

func onOff(active bool) string {
	if active {
		return "active"
	}
	return "hidden"
}

var projectsCmd = resourceDef[model.Project]{
	use:    "projects",
	short:  "Manage portfolio projects",
	store:  func(c *client.Client) sync.Store[model.Project] { return c.Projects() },
	opts:   sync.Options[model.Project]{ID: func(p model.Project) string { return p.ID.String() }},
	decode: decodeRow[api.ProjectRow](convert.FromProjectRow),
	header: "ID\tNAME\tTAGS\tSTATE",
	row: func(p model.Project) string {
		return p.ID.String() + "\t" + p.Name + "\t" + strconv.Itoa(len(p.Tags)) + "\t" + onOff(p.IsActive)
	},
}.command()

var experiencesCmd = resourceDef[model.Experience]{
	use:       "experiences",
	short:     "Manage employment records",
	store:     func(c *client.Client) sync.Store[model.Experience] { return c.Experiences() },
	opts:      sync.Options[model.Experience]{ID: func(e model.Experience) string { return e.ID.String() }},
	decode:    decodeRow[api.ExperienceRow](convert.FromExperienceRow),
	header:    "ID\tTITLE\tCOMPANY\tPERIOD\tSTATE",
	filterKey: "type",
	row: func(e model.Experience) string {
		return e.ID.String() + "\t" + e.Title + "\t" + e.Company + "\t" + e.Period + "\t" + onOff(e.IsActive)
	},
}.command()

var skillsCmd = resourceDef[model.Skill]{
	use:       "skills",
	short:     "Manage skill entries",
	store:     func(c *client.Client) sync.Store[model.Skill] { return c.Skills() },
	opts:      sync.Options[model.Skill]{ID: func(s model.Skill) string { return s.ID.String() }},
	decode:    decodeRow[api.SkillRow](convert.FromSkillRow),
	header:    "ID\tNAME\tCATEGORY\tLEVEL\tSTATE",
	filterKey: "category",
	row: func(s model.Skill) string {
		return s.ID.String() + "\t" + s.Name + "\t" + s.Category + "\t" + strconv.Itoa(s.Level) + "\t" + onOff(s.IsActive)
	},
}.command()

var resumesCmd = resourceDef[model.Resume]{
	use:   "resumes",
	short: "Manage resume entries (one active at a time)",
	store: func(c *client.Client) sync.Store[model.Resume] { return c.Resumes() },
	opts: sync.Options[model.Resume]{
		ID:              func(r model.Resume) string { return r.ID.String() },
		IsActive:        func(r model.Resume) bool { return r.IsActive },
		SetActive:       func(r *model.Resume, v bool) { r.IsActive = v },
		ExclusiveActive: true,
	},
	decode: decodeRow[api.ResumeRow](convert.FromResumeRow),
	header: "ID\tLABEL\tPATH\tSTATE",
	row: func(r model.Resume) string {
		return r.ID.String() + "\t" + r.Label + "\t" + r.Path + "\t" + onOff(r.IsActive)
	},
}.command()
