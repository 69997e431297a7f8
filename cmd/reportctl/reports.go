package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"cctv-surveillance-reports/be/client/apiclient"
	"cctv-surveillance-reports/be/client/export"
	"cctv-surveillance-reports/be/client/filter"
	"cctv-surveillance-reports/be/client/imagenorm"
	"cctv-surveillance-reports/be/client/session"
	"cctv-surveillance-reports/be/client/view"
	"cctv-surveillance-reports/be/models"
	"cctv-surveillance-reports/be/vocab"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const cellLimit = 48

func newActivityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"activities"},
		Short:   "CCTV monitoring reports",
	}
	cmd.AddCommand(
		newActivitySubmitCmd(a),
		newActivityListCmd(a),
		newActivityExportCmd(a),
		newDeleteCmd(a, session.RouteActivityReport, (*apiclient.Client).Activities),
	)
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Daily surveillance status reports",
	}
	cmd.AddCommand(
		newStatusSubmitCmd(a),
		newStatusListCmd(a),
		newStatusExportCmd(a),
		newDeleteCmd(a, session.RouteStatusReport, (*apiclient.Client).Statuses),
	)
	return cmd
}

func newActivitySubmitCmd(a *app) *cobra.Command {
	var rec models.ActivityReport
	var images []string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an activity report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(session.RouteActivityForm); err != nil {
				return err
			}
			if rec.Datetime == "" || rec.Location == "" || rec.Findings == "" || rec.Intensity == "" {
				return errors.New("please provide datetime, location, findings, and intensity")
			}
			if err := checkLocation(rec.Location); err != nil {
				return err
			}

			files, err := readImages(images)
			if err != nil {
				return err
			}
			out, err := imagenorm.New().Normalize(cmd.Context(), files)
			if err != nil {
				return err
			}
			for _, w := range out.Warnings {
				a.notify(w)
			}
			for _, r := range out.Results {
				if r.Fallback {
					a.log.Warn("image could not be re-encoded, sending it unchanged", zap.String("file", r.Name), zap.Error(r.Err))
				}
			}
			rec.Images = out.Payloads()

			created, err := a.client().Activities().Create(cmd.Context(), &rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Report created successfully (%s, %d images)\n", created.ID, len(created.Images))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&rec.Datetime, "datetime", "", "when the activity was observed, e.g. 2024-01-15T14:30")
	f.StringVar(&rec.Location, "location", "", "location ("+strings.Join(vocab.Locations().Values(), ", ")+")")
	f.StringVar(&rec.Findings, "findings", "", "findings / concerns")
	f.StringVar(&rec.Intensity, "intensity", "", "activity intensity ("+strings.Join(vocab.Intensities().Values(), ", ")+")")
	f.StringSliceVar(&images, "image", nil, "image file to attach (repeatable)")
	return cmd
}

func newStatusSubmitCmd(a *app) *cobra.Command {
	var rec models.StatusReport
	var total, working, nonWorking, daysRecorded int
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a daily status report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(session.RouteStatusForm); err != nil {
				return err
			}
			f := cmd.Flags()
			counts := map[string]struct {
				value int
				dst   **int
			}{
				"total-cameras":       {total, &rec.TotalCameras},
				"working-cameras":     {working, &rec.WorkingCameras},
				"non-working-cameras": {nonWorking, &rec.NonWorkingCameras},
				"days-recorded":       {daysRecorded, &rec.TotalDaysRecorded},
			}
			for name, c := range counts {
				if f.Changed(name) {
					*c.dst = models.IntPtr(c.value)
				}
			}
			if rec.Date == "" || rec.Location == "" || rec.OpeningTime == "" || rec.ClosingTime == "" || rec.Status == "" ||
				rec.TotalCameras == nil || rec.WorkingCameras == nil || rec.NonWorkingCameras == nil || rec.TotalDaysRecorded == nil {
				return errors.New("please provide all required fields")
			}
			if err := checkLocation(rec.Location); err != nil {
				return err
			}

			created, err := a.client().Statuses().Create(cmd.Context(), &rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Status created successfully (%s)\n", created.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&rec.Date, "date", "", "report date, e.g. 2024-01-15")
	f.StringVar(&rec.Location, "location", "", "location")
	f.StringVar(&rec.OpeningTime, "opening", "", "opening time, HH:MM")
	f.StringVar(&rec.ClosingTime, "closing", "", "closing time, HH:MM")
	f.StringVar(&rec.Status, "state", "", "site status, e.g. Open")
	f.IntVar(&total, "total-cameras", 0, "total cameras")
	f.IntVar(&working, "working-cameras", 0, "working cameras")
	f.IntVar(&nonWorking, "non-working-cameras", 0, "non-working cameras")
	f.IntVar(&daysRecorded, "days-recorded", 0, "total days recorded")
	f.StringVar(&rec.Remarks, "remarks", "", "remarks")
	return cmd
}

type activityFilterFlags struct {
	criteria filter.ActivityCriteria
}

func (ff *activityFilterFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&ff.criteria.From, "from", "", "first day to include, YYYY-MM-DD")
	f.StringVar(&ff.criteria.To, "to", "", "last day to include, YYYY-MM-DD")
	f.StringVar(&ff.criteria.Location, "location", "", "only this location")
	f.StringVar(&ff.criteria.Intensity, "intensity", "", "only this intensity")
}

func (ff *activityFilterFlags) load(a *app, cmd *cobra.Command) (*view.ActivityView, error) {
	if err := a.require(session.RouteActivityReport); err != nil {
		return nil, err
	}
	if err := checkDays(&ff.criteria.From, &ff.criteria.To); err != nil {
		return nil, err
	}
	v, err := view.LoadActivities(cmd.Context(), a.client().Activities().FetchAll)
	if err != nil {
		return nil, err
	}
	v.SetCriteria(ff.criteria)
	return v, nil
}

type statusFilterFlags struct {
	criteria filter.StatusCriteria
}

func (ff *statusFilterFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&ff.criteria.From, "from", "", "first day to include, YYYY-MM-DD")
	f.StringVar(&ff.criteria.To, "to", "", "last day to include, YYYY-MM-DD")
	f.StringVar(&ff.criteria.Location, "location", "", "only this location")
}

func (ff *statusFilterFlags) load(a *app, cmd *cobra.Command) (*view.StatusView, error) {
	if err := a.require(session.RouteStatusReport); err != nil {
		return nil, err
	}
	if err := checkDays(&ff.criteria.From, &ff.criteria.To); err != nil {
		return nil, err
	}
	v, err := view.LoadStatuses(cmd.Context(), a.client().Statuses().FetchAll)
	if err != nil {
		return nil, err
	}
	v.SetCriteria(ff.criteria)
	return v, nil
}

// checkDays rejects --from and --to values that are not calendar days and
// trims a trailing time of day.
func checkDays(from, to *string) error {
	for _, bound := range []struct {
		flag  string
		value *string
	}{{"from", from}, {"to", to}} {
		if *bound.value == "" {
			continue
		}
		day, ok := filter.DayOf(*bound.value)
		if !ok {
			return fmt.Errorf("invalid --%s date %q, want YYYY-MM-DD", bound.flag, *bound.value)
		}
		*bound.value = day
	}
	return nil
}

func newActivityListCmd(a *app) *cobra.Command {
	var ff activityFilterFlags
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activity reports, 25 per page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := ff.load(a, cmd)
			if err != nil {
				return err
			}
			if err := gotoPage(&v.View, page); err != nil {
				return err
			}
			printPage(a.out, export.ActivityTable(v.Page()), v.SerialOffset())
			printFooter(a.out, v.Summary(), &v.View)
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	return cmd
}

func newStatusListCmd(a *app) *cobra.Command {
	var ff statusFilterFlags
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List daily status reports, 25 per page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := ff.load(a, cmd)
			if err != nil {
				return err
			}
			if err := gotoPage(&v.View, page); err != nil {
				return err
			}
			printPage(a.out, export.StatusTable(v.Page()), v.SerialOffset())
			printFooter(a.out, v.Summary(), &v.View)
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	return cmd
}

func newActivityExportCmd(a *app) *cobra.Command {
	var ff activityFilterFlags
	var format, dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered activity reports as PDF or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			v, err := ff.load(a, cmd)
			if err != nil {
				return err
			}
			rows := v.Filtered()
			return a.save(export.ActivityTable(rows), f, dir, len(rows))
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&format, "format", "pdf", "pdf or xlsx")
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	return cmd
}

func newStatusExportCmd(a *app) *cobra.Command {
	var ff statusFilterFlags
	var format, dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered status reports as PDF or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			v, err := ff.load(a, cmd)
			if err != nil {
				return err
			}
			rows := v.Filtered()
			return a.save(export.StatusTable(rows), f, dir, len(rows))
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&format, "format", "pdf", "pdf or xlsx")
	cmd.Flags().StringVar(&dir, "dir", ".", "output directory")
	return cmd
}

func (a *app) save(t export.Table, f export.Format, dir string, n int) error {
	path, err := export.Save(t, f, dir, a.notify)
	if err != nil {
		a.log.Error("export failed", zap.String("format", string(f)), zap.Error(err))
		return err
	}
	fmt.Fprintf(a.out, "Exported %d records to %s\n", n, path)
	return nil
}

func newDeleteCmd[T any](a *app, route session.Route, resource func(*apiclient.Client) apiclient.Resource[T]) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.require(route); err != nil {
				return err
			}
			confirm := a.confirm
			if yes {
				confirm = nil
			}
			err := resource(a.client()).Delete(cmd.Context(), args[0], confirm)
			if errors.Is(err, apiclient.ErrDeleteCancelled) {
				fmt.Fprintln(a.out, "Cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Deleted", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func checkLocation(loc string) error {
	if !vocab.Locations().Contains(loc) {
		return fmt.Errorf("unknown location %q", loc)
	}
	return nil
}

func readImages(paths []string) ([]imagenorm.File, error) {
	files := make([]imagenorm.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		files = append(files, imagenorm.File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

func gotoPage[T any](v *view.View[T], page int) error {
	if page == 1 || v.GoTo(page) {
		return nil
	}
	return fmt.Errorf("page %d is out of range (1-%d)", page, v.TotalPages())
}

// printPage writes t as an aligned table, numbering rows from first.
func printPage(w io.Writer, t export.Table, first int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		cells[0] = fmt.Sprint(first + i)
		for j := 1; j < len(row); j++ {
			cells[j] = truncate(fmt.Sprint(row[j]))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func printFooter[T any](w io.Writer, summary string, v *view.View[T]) {
	if summary != "" {
		fmt.Fprintln(w, summary)
	}
	pages := v.TotalPages()
	if pages == 0 {
		fmt.Fprintln(w, "No records found")
		return
	}
	fmt.Fprintf(w, "Page %d of %d (%d records)\n", v.CurrentPage(), pages, len(v.Filtered()))
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= cellLimit {
		return s
	}
	return string(r[:cellLimit-3]) + "..."
}
