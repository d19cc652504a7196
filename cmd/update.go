package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lernpath/internal/selfupdate"
)

const updateTimeout = 2 * time.Minute

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update lernpath to the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		checkOnly, _ := cmd.Flags().GetBool("check")
		target, _ := cmd.Flags().GetString("version")

		checker := selfupdate.NewChecker(selfupdate.WithTimeout(updateTimeout))
		ctx, cancel := context.WithTimeout(cmd.Context(), updateTimeout)
		defer cancel()

		if checkOnly {
			return reportLatest(ctx, checker)
		}

		err := checker.Update(ctx, &selfupdate.UpdateInput{
			CurrentVersion: version,
			TargetVersion:  target,
		}, func(p selfupdate.UpdateProgress) {
			fmt.Println(p.Message)
		})

		switch {
		case err == nil:
			return nil
		case errors.Is(err, selfupdate.ErrDevBuild):
			fmt.Println("Cannot update a development build. Install a release build first.")
			return nil
		case errors.Is(err, selfupdate.ErrAlreadyLatest):
			fmt.Println("Already running the latest version.")
			return nil
		case os.IsPermission(err):
			return fmt.Errorf("%w\n\nTry running: sudo lernpath update", err)
		default:
			return err
		}
	},
}

func reportLatest(ctx context.Context, checker *selfupdate.Checker) error {
	res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
	if errors.Is(err, selfupdate.ErrDevBuild) {
		fmt.Println("Development build, cannot compare against releases.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("check for updates: %w", err)
	}
	if !res.UpdateAvailable {
		fmt.Printf("lernpath %s is up to date.\n", res.CurrentVersion)
		return nil
	}
	fmt.Printf("Update available: %s -> %s\n", res.CurrentVersion, res.LatestVersion)
	fmt.Printf("Release notes: %s\n", res.ReleaseURL)
	fmt.Println("Run `lernpath update` to install it.")
	return nil
}

func init() {
	updateCmd.Flags().Bool("check", false, "Only check whether a newer release exists")
	updateCmd.Flags().String("version", "", "Install a specific release tag (e.g. v1.2.0) instead of the latest")
}
