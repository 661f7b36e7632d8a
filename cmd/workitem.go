package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/adolog/internal/model"
	"github.com/Tiliavir/adolog/internal/workitem"
)

var (
	showOrg       string
	showProject   string
	showRelations bool
)

var workItemCmd = &cobra.Command{
	Use:     "workitem",
	Aliases: []string{"wi"},
	Short:   "Look up Azure DevOps work items",
}

var workItemShowCmd = &cobra.Command{
	Use:   "show <url|id>",
	Short: "Show the details of a work item",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkItemShow,
}

func init() {
	workItemShowCmd.Flags().StringVar(&showOrg, "org", "", "Organization for a bare id (default from settings)")
	workItemShowCmd.Flags().StringVar(&showProject, "project", "", "Project for a bare id")
	workItemShowCmd.Flags().BoolVar(&showRelations, "relations", false, "Include linked items")
	workItemCmd.AddCommand(workItemShowCmd)
}

func runWorkItemShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	org := showOrg
	if org == "" {
		org = a.organization()
	}
	ref, err := workItemRef(args[0], org, showProject)
	if err != nil {
		return err
	}
	client, err := a.workItems()
	if err != nil {
		return err
	}

	id, _ := strconv.Atoi(ref.ID)
	d, err := client.Get(cmd.Context(), ref.Organization, ref.Project, id, showRelations)
	if err != nil {
		return err
	}

	printWorkItem(cmd, d, ref.Organization)
	return nil
}

func printWorkItem(cmd *cobra.Command, d workitem.Details, org string) {
	bold := color.New(color.Bold)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, bold.Sprintf("#%d %s", d.ID, d.Title))

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 80
	tbl.AddRow("Type", d.Type)
	tbl.AddRow("State", d.State)
	tbl.AddRow("Assigned", d.AssignedTo)
	tbl.AddRow("Iteration", d.IterationPath)
	if len(d.Tags) > 0 {
		tbl.AddRow("Tags", strings.Join(d.Tags, ", "))
	}
	if d.Parent != 0 {
		tbl.AddRow("Parent", fmt.Sprintf("#%d", d.Parent))
	}
	tbl.AddRow("Link", d.Ref(org).URL())
	fmt.Fprintln(out, tbl)

	if len(d.Relations) > 0 {
		rel := uitable.New()
		rel.Separator = "  "
		rel.AddRow(bold.Sprint("Relation"), bold.Sprint("Link"))
		for _, r := range d.Relations {
			name := r.Name
			if name == "" {
				name = r.Rel
			}
			rel.AddRow(name, r.URL)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, rel)
	}
}

// workItemRef accepts a work item browser URL or a bare numeric id. A bare
// id needs the organization and project from flags or settings.
func workItemRef(arg, org, project string) (model.WorkItemRef, error) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "http") {
		o, p, id, err := workitem.ParseURL(arg)
		if err != nil {
			return model.WorkItemRef{}, err
		}
		return model.WorkItemRef{ID: strconv.Itoa(id), Organization: o, Project: p}, nil
	}

	id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil || id <= 0 {
		return model.WorkItemRef{}, fmt.Errorf("work item must be a URL or a positive id, got %q", arg)
	}
	if org == "" {
		return model.WorkItemRef{}, fmt.Errorf("work item %d: no organization, pass --org or run `adolog settings set --org`", id)
	}
	if project == "" {
		return model.WorkItemRef{}, fmt.Errorf("work item %d: pass --project or use the full URL", id)
	}
	return model.WorkItemRef{ID: strconv.Itoa(id), Organization: org, Project: project}, nil
}
