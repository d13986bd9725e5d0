package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/MackanT/WorkTimer/internal/app"
	"github.com/MackanT/WorkTimer/internal/config"
	"github.com/MackanT/WorkTimer/internal/timer"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// a.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptSecret reads a secret from the terminal without echoing it.
func promptSecret(label string) (string, error) {
	fmt.Printf("%s: ", label)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", label, err)
	}
	return strings.TrimSpace(string(data)), nil
}

var rootCmd = &cobra.Command{
	Use:   "worktimer",
	Short: "Personal time tracking",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.Init(defaults["config_path"], defaults["base_dir"])
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Database: %s\n", cfg.Database.Path)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:   %s\n", cfg.LogDir)
		fmt.Printf("Database:  %s\n", cfg.Database.Path)
		fmt.Printf("Dimension: %s .. %s\n", cfg.Database.DimensionStart, cfg.Database.DimensionEnd)
		fmt.Printf("Backups:   %s (%s, encrypt=%v)\n", cfg.Backup.Dir, cfg.Backup.Type, cfg.Backup.Encrypt)
		return nil
	},
}

// customer command
var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Manage customers",
}

var customerAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a customer or a new wage version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startDate, _ := cmd.Flags().GetString("start")
		wage, _ := cmd.Flags().GetFloat64("wage")
		orgURL, _ := cmd.Flags().GetString("org-url")
		askPAT, _ := cmd.Flags().GetBool("pat")

		if startDate == "" {
			startDate = time.Now().Format("2006-01-02")
		}

		var patToken string
		if askPAT {
			var err error
			patToken, err = promptSecret("PAT token")
			if err != nil {
				return err
			}
		}

		a, err := newApp("AddCustomer")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.AddCustomer(args[0], startDate, wage, orgURL, patToken)
		if err != nil {
			a.MarkFailed()
			return err
		}

		fmt.Printf("Customer %s effective from %s (id %d)\n", args[0], startDate, id)
		return nil
	},
}

var customerUpdateCmd = &cobra.Command{
	Use:   "update NAME NEW_NAME",
	Short: "Rename a customer and update its DevOps credentials",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		orgURL, _ := cmd.Flags().GetString("org-url")
		askPAT, _ := cmd.Flags().GetBool("pat")

		var patToken string
		if askPAT {
			var err error
			patToken, err = promptSecret("PAT token")
			if err != nil {
				return err
			}
		}

		a, err := newApp("UpdateCustomer")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.UpdateCustomer(args[0], args[1], orgURL, patToken); err != nil {
			a.MarkFailed()
			return err
		}

		fmt.Printf("Customer %s renamed to %s\n", args[0], args[1])
		return nil
	},
}

var customerDisableCmd = &cobra.Command{
	Use:   "disable NAME",
	Short: "Hide a customer from pickers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DisableCustomer")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DisableCustomer(args[0]); err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Customer %s disabled\n", args[0])
		return nil
	},
}

var customerEnableCmd = &cobra.Command{
	Use:   "enable NAME",
	Short: "Re-activate a disabled customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("EnableCustomer")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.EnableCustomer(args[0]); err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Customer %s enabled\n", args[0])
		return nil
	},
}

var customerMoveUpCmd = &cobra.Command{
	Use:   "move-up NAME",
	Short: "Move a customer up in the display order",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return moveCustomer(args[0], true) },
}

var customerMoveDownCmd = &cobra.Command{
	Use:   "move-down NAME",
	Short: "Move a customer down in the display order",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return moveCustomer(args[0], false) },
}

func moveCustomer(name string, up bool) error {
	a, err := newApp("MoveCustomer")
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.MoveCustomer(name, up); err != nil {
		a.MarkFailed()
		return err
	}
	fmt.Printf("Customer %s moved\n", name)
	return nil
}

var customerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		a, err := newApp("ListCustomers")
		if err != nil {
			return err
		}
		defer a.Close()

		customers, err := a.Customers(all)
		if err != nil {
			return err
		}

		if len(customers) == 0 {
			fmt.Println("No customers.")
			return nil
		}

		for _, c := range customers {
			state := ""
			if !c.IsCurrent {
				state = "  [disabled]"
			}
			devops := ""
			if c.OrgURL != "" {
				devops = "  devops"
			}
			fmt.Printf("%-20s  wage %8.2f  since %s%s%s\n",
				c.Name, c.Wage, c.ValidFrom.Format("2006-01-02"), devops, state)
		}
		return nil
	},
}

// project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add CUSTOMER PROJECT",
	Short: "Add a project under a customer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		workItemID, _ := cmd.Flags().GetInt64("work-item")

		a, err := newApp("AddProject")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.AddProject(args[0], args[1], workItemID)
		if err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Project %s added under %s (id %d)\n", args[1], args[0], id)
		return nil
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update CUSTOMER PROJECT NEW_NAME",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		workItemID, _ := cmd.Flags().GetInt64("work-item")

		a, err := newApp("UpdateProject")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.UpdateProject(args[0], args[1], args[2], workItemID); err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Project %s renamed to %s\n", args[1], args[2])
		return nil
	},
}

var projectDisableCmd = &cobra.Command{
	Use:   "disable CUSTOMER PROJECT",
	Short: "Hide a project from pickers",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DisableProject")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DisableProject(args[0], args[1]); err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Project %s disabled\n", args[1])
		return nil
	},
}

var projectEnableCmd = &cobra.Command{
	Use:   "enable CUSTOMER PROJECT",
	Short: "Re-activate a disabled project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("EnableProject")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.EnableProject(args[0], args[1]); err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Project %s enabled\n", args[1])
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list CUSTOMER",
	Short: "List a customer's projects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		a, err := newApp("ListProjects")
		if err != nil {
			return err
		}
		defer a.Close()

		projects, err := a.Projects(args[0], all)
		if err != nil {
			return err
		}

		if len(projects) == 0 {
			fmt.Println("No projects.")
			return nil
		}

		for _, p := range projects {
			state := ""
			if !p.IsCurrent {
				state = "  [disabled]"
			}
			workItem := ""
			if p.WorkItemID != 0 {
				workItem = fmt.Sprintf("  #%d", p.WorkItemID)
			}
			fmt.Printf("%-30s%s%s\n", p.Name, workItem, state)
		}
		return nil
	},
}

// bonus command
var bonusCmd = &cobra.Command{
	Use:   "bonus",
	Short: "Manage bonus percentages",
}

var bonusAddCmd = &cobra.Command{
	Use:   "add START_DATE PERCENT",
	Short: "Record a new bonus percentage effective from a date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		percent, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("parsing percent: %w", err)
		}

		a, err := newApp("AddBonus")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.AddBonus(args[0], percent); err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Bonus %v%% effective from %s\n", percent, args[0])
		return nil
	},
}

var bonusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bonus intervals",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListBonuses")
		if err != nil {
			return err
		}
		defer a.Close()

		bonuses, err := a.Bonuses()
		if err != nil {
			return err
		}

		if len(bonuses) == 0 {
			fmt.Println("No bonuses recorded.")
			return nil
		}

		for _, b := range bonuses {
			end := "open"
			if b.EndDate != nil {
				end = b.EndDate.Format("2006-01-02")
			}
			fmt.Printf("%5.1f%%  %s .. %s\n", b.Percent*100, b.StartDate.Format("2006-01-02"), end)
		}
		return nil
	},
}

// toggle command
var toggleCmd = &cobra.Command{
	Use:   "toggle CUSTOMER PROJECT",
	Short: "Start or stop the timer for a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		comment, _ := cmd.Flags().GetString("comment")
		workItemID, _ := cmd.Flags().GetInt64("work-item")

		a, err := newApp("Toggle")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Toggle(args[0], args[1], comment, workItemID)
		if err != nil {
			a.MarkFailed()
			return err
		}

		if result.Started {
			fmt.Printf("Started %s / %s at %s\n",
				args[0], args[1], result.Entry.StartTime.Format("15:04:05"))
		} else {
			fmt.Printf("Stopped %s / %s: %.2f h, %.2f earned\n",
				args[0], args[1], result.Entry.TotalTime,
				result.Entry.Cost+result.Entry.UserBonus)
		}
		return nil
	},
}

// cancel command
var cancelCmd = &cobra.Command{
	Use:   "cancel CUSTOMER PROJECT",
	Short: "Discard a running timer without recording anything",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Cancel")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Cancel(args[0], args[1]); err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Cancelled running timer for %s / %s\n", args[0], args[1])
		return nil
	},
}

// entry command
var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage recorded time entries",
}

var entryAddCmd = &cobra.Command{
	Use:   "add CUSTOMER PROJECT START END",
	Short: "Record a finished span (times as \"2006-01-02 15:04:05\")",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		comment, _ := cmd.Flags().GetString("comment")
		workItemID, _ := cmd.Flags().GetInt64("work-item")

		a, err := newApp("AddHistoric")
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.AddHistoric(args[0], args[1], args[2], args[3], comment, workItemID)
		if err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Entry %d recorded\n", id)
		return nil
	},
}

var entryEditCmd = &cobra.Command{
	Use:   "edit TIME_ID FIELD VALUE",
	Short: "Change one field of an entry (start_time, end_time, comment, work_item_id)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing time id: %w", err)
		}

		a, err := newApp("EditEntry")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.EditEntry(timeID, args[1], args[2]); err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Entry %d updated\n", timeID)
		return nil
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete TIME_ID",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing time id: %w", err)
		}

		a, err := newApp("DeleteEntry")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteEntry(timeID); err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Entry %d deleted\n", timeID)
		return nil
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View recent time entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("RecentEntries")
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.RecentEntries(limit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No entries recorded.")
			return nil
		}

		for _, e := range entries {
			end := "running"
			if e.EndTime != nil {
				end = e.EndTime.Format("15:04:05")
			}
			fmt.Printf("#%-5d %s  %s .. %-8s  %5.2f h  %-20s %s\n",
				e.ID,
				e.StartTime.Format("2006-01-02"),
				e.StartTime.Format("15:04:05"), end,
				e.TotalTime, e.CustomerName, e.ProjectName)
		}
		return nil
	},
}

// report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize tracked time per customer and project",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		metric, _ := cmd.Flags().GetString("metric")

		a, err := newApp("Report")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Report(period, metric)
		if err != nil {
			return err
		}

		if len(report.Rows) == 0 {
			fmt.Println("Nothing tracked in this period.")
			return nil
		}

		unit := "h"
		if report.Metric == timer.MetricCurrency {
			unit = ""
		}
		for _, t := range report.Totals {
			fmt.Printf("%-20s  %10.2f %s\n", t.CustomerName, t.Value, unit)
			for _, r := range report.Rows {
				if r.CustomerName == t.CustomerName {
					fmt.Printf("    %-20s  %8.2f %s\n", r.ProjectName, r.Value, unit)
				}
			}
		}
		return nil
	},
}

// query command
var queryCmd = &cobra.Command{
	Use:   "query SQL",
	Short: "Run an ad hoc SQL statement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Query")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Query(args[0])
		if err != nil {
			a.MarkFailed()
			return err
		}

		if len(result.Columns) == 0 {
			fmt.Printf("%d row(s) affected\n", result.RowsAffected)
			return nil
		}

		fmt.Println(strings.Join(result.Columns, "\t"))
		for _, row := range result.Rows {
			fmt.Println(strings.Join(row, "\t"))
		}
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the database to the backup destination",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Backup")
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.Backup()
		if err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Printf("Backup stored as %s\n", name)
		return nil
	},
}

var dbBackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListBackups")
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.Backups()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No backups stored.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var dbRestoreCmd = &cobra.Command{
	Use:   "restore NAME",
	Short: "Restore a snapshot next to the live database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RestoreBackup")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase := ""
		if strings.HasSuffix(args[0], ".age") {
			passphrase, err = promptSecret("passphrase")
			if err != nil {
				return err
			}
		}

		if err := a.RestoreBackup(args[0], passphrase); err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Println("Snapshot restored; swap it in after this process exits.")
		return nil
	},
}

var dbEncryptInitCmd = &cobra.Command{
	Use:   "encrypt-init",
	Short: "Generate the key pair for encrypted backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupEncryption")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := promptSecret("passphrase")
		if err != nil {
			return err
		}
		confirm, err := promptSecret("confirm passphrase")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupEncryption(passphrase); err != nil {
			a.MarkFailed()
			return err
		}
		fmt.Println("Encryption keys generated. Enable encrypt in the backup config to use them.")
		return nil
	},
}

// devops command
var devopsCmd = &cobra.Command{
	Use:   "devops",
	Short: "Azure DevOps integration",
}

var devopsCommentCmd = &cobra.Command{
	Use:   "comment CUSTOMER WORK_ITEM TEXT",
	Short: "Append a comment to a work item",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		workItemID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing work item id: %w", err)
		}

		a, err := newApp("SaveWorkItemComment")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SaveWorkItemComment(args[0], workItemID, args[2]); err != nil {
			return err
		}
		fmt.Printf("Comment saved to work item %d\n", workItemID)
		return nil
	},
}

var devopsVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check all configured DevOps connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("VerifyConnections")
		if err != nil {
			return err
		}
		defer a.Close()

		failures := a.VerifyConnections()
		if len(failures) == 0 {
			fmt.Println("All connections OK.")
			return nil
		}
		for name, err := range failures {
			fmt.Printf("%s: %v\n", name, err)
		}
		return fmt.Errorf("%d connection(s) failed", len(failures))
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	customerCmd.AddCommand(customerAddCmd)
	customerAddCmd.Flags().String("start", "", "Effective date (YYYY-MM-DD, default today)")
	customerAddCmd.Flags().Float64("wage", 0, "Hourly wage")
	customerAddCmd.Flags().String("org-url", "", "Azure DevOps organization URL")
	customerAddCmd.Flags().Bool("pat", false, "Prompt for a PAT token")
	customerCmd.AddCommand(customerUpdateCmd)
	customerUpdateCmd.Flags().String("org-url", "", "Azure DevOps organization URL")
	customerUpdateCmd.Flags().Bool("pat", false, "Prompt for a PAT token")
	customerCmd.AddCommand(customerDisableCmd)
	customerCmd.AddCommand(customerEnableCmd)
	customerCmd.AddCommand(customerMoveUpCmd)
	customerCmd.AddCommand(customerMoveDownCmd)
	customerCmd.AddCommand(customerListCmd)
	customerListCmd.Flags().Bool("all", false, "Include disabled customers")

	projectCmd.AddCommand(projectAddCmd)
	projectAddCmd.Flags().Int64("work-item", 0, "Azure DevOps work item id")
	projectCmd.AddCommand(projectUpdateCmd)
	projectUpdateCmd.Flags().Int64("work-item", 0, "Azure DevOps work item id")
	projectCmd.AddCommand(projectDisableCmd)
	projectCmd.AddCommand(projectEnableCmd)
	projectCmd.AddCommand(projectListCmd)
	projectListCmd.Flags().Bool("all", false, "Include disabled projects")

	bonusCmd.AddCommand(bonusAddCmd)
	bonusCmd.AddCommand(bonusListCmd)

	toggleCmd.Flags().String("comment", "", "Comment for the recorded span")
	toggleCmd.Flags().Int64("work-item", 0, "Azure DevOps work item id")

	entryCmd.AddCommand(entryAddCmd)
	entryAddCmd.Flags().String("comment", "", "Comment for the span")
	entryAddCmd.Flags().Int64("work-item", 0, "Azure DevOps work item id")
	entryCmd.AddCommand(entryEditCmd)
	entryCmd.AddCommand(entryDeleteCmd)

	logCmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to show")

	reportCmd.Flags().String("period", "day", "Period: day, week, month, year, all")
	reportCmd.Flags().String("metric", "hours", "Metric: hours, currency")

	dbCmd.AddCommand(dbBackupCmd)
	dbCmd.AddCommand(dbBackupsCmd)
	dbCmd.AddCommand(dbRestoreCmd)
	dbCmd.AddCommand(dbEncryptInitCmd)

	devopsCmd.AddCommand(devopsCommentCmd)
	devopsCmd.AddCommand(devopsVerifyCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(customerCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(bonusCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(devopsCmd)
}
