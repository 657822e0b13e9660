package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored phrases for matching videos",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient(0)
		if err != nil {
			return err
		}

		path := "/search?q=" + url.QueryEscape(query)
		if limit > 0 {
			path += "&limit=" + strconv.Itoa(limit)
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var out struct {
			Results []struct {
				VideoID string  `json:"video_id"`
				Phrase  string  `json:"phrase"`
				Tier    string  `json:"tier"`
				Score   float64 `json:"score"`
			} `json:"results"`
		}
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}

		if len(out.Results) == 0 {
			printWarning("no matches for %q", query)
			return nil
		}
		for _, r := range out.Results {
			fmt.Printf("%-12s %.3f  %q → %s\n", r.Tier, r.Score, r.Phrase, r.VideoID)
		}
		return nil
	},
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status [page]",
	Short: "Show the paginated association listing",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("page must be a positive integer, got %q", args[0])
			}
			page = n
		}

		caller, err := callerFlag(cmd)
		if err != nil {
			return err
		}
		client, err := newAPIClient(caller)
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/status?page="+strconv.Itoa(page))
		if err != nil {
			return err
		}

		var out struct {
			Entries []struct {
				Seq     int64  `json:"seq"`
				Phrase  string `json:"phrase"`
				VideoID string `json:"video_id"`
				OwnerID int64  `json:"owner_id"`
			} `json:"entries"`
			Page       int `json:"page"`
			TotalPages int `json:"total_pages"`
			TotalCount int `json:"total_count"`
		}
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}

		if out.TotalCount == 0 {
			printWarning("no associations yet")
			return nil
		}
		printStatus("page", "%d/%d — total %d", out.Page, out.TotalPages, out.TotalCount)
		for _, e := range out.Entries {
			fmt.Printf("%d. %q → %s (by %d)\n", e.Seq, e.Phrase, e.VideoID, e.OwnerID)
		}
		return nil
	},
}

// --- owner ---

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Manage the owner allow-list",
}

var ownerAddCmd = &cobra.Command{
	Use:   "add <user_id>",
	Short: "Grant owner rights to a user id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		newID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		caller, err := callerFlag(cmd)
		if err != nil {
			return err
		}
		client, err := newAPIClient(caller)
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/owners", map[string]any{"user_id": newID})
		if err != nil {
			return err
		}
		var out struct {
			UserID int64 `json:"user_id"`
		}
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}
		printSuccess("owner %d added", out.UserID)
		return nil
	},
}

func callerFlag(cmd *cobra.Command) (int64, error) {
	caller, _ := cmd.Flags().GetInt64("as")
	if caller == 0 {
		return 0, fmt.Errorf("--as <owner_id> is required")
	}
	return caller, nil
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum number of results (default 10)")
	statusCmd.Flags().Int64("as", 0, "caller owner id")
	ownerAddCmd.Flags().Int64("as", 0, "caller owner id")
	ownerCmd.AddCommand(ownerAddCmd)
}
