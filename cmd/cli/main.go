package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/ytgrab-go/internal/app"
	"github.com/yourusername/ytgrab-go/internal/domain"
)

var (
	serverURL    string
	serverConfig string
	noAutoStart  bool
	rootCmd      = &cobra.Command{
		Use:   "ytgrab",
		Short: "ytgrab CLI - look up and download YouTube videos",
		Long:  `A command-line interface for the ytgrab server: resolve video titles and thumbnails, and download videos as mp4, webm or mp3.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.PersistentFlags().StringVar(&serverConfig, "server-config", "", "Config file passed to an auto-started server")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

var infoCmd = &cobra.Command{
	Use:   "info [url]",
	Short: "Show a video's title and thumbnail",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		jsonOutput, _ := cmd.Flags().GetBool("json")

		info, err := newAPIClient(serverURL).Info(args[0])
		if err != nil {
			fail(err)
		}

		if jsonOutput {
			prettyJSON, _ := json.MarshalIndent(info, "", "  ")
			fmt.Println(string(prettyJSON))
			return
		}

		fmt.Printf("Title:     %s\n", info.Title)
		fmt.Printf("URL:       %s\n", info.URL)
		if info.Thumbnail != nil {
			fmt.Printf("Thumbnail: %s%s\n", serverURL, *info.Thumbnail)
		} else {
			fmt.Printf("Thumbnail: (none)\n")
		}
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Download a video",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		format, _ := cmd.Flags().GetString("format")
		title, _ := cmd.Flags().GetString("title")
		outDir, _ := cmd.Flags().GetString("output")

		if _, err := domain.ParseFormat(format); err != nil {
			fail(err)
		}

		client := newAPIClient(serverURL)
		if title == "" {
			info, err := client.Info(args[0])
			if err != nil {
				fail(err)
			}
			title = info.Title
		}

		fmt.Printf("Downloading %q as %s...\n", title, format)
		saved, err := client.Download(args[0], format, title, outDir)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Saved %s (%d bytes)\n", saved.Path, saved.Size)
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [url]",
	Short: "Print the canonical form of a YouTube URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		url, err := domain.NormalizeURL(args[0])
		if err != nil {
			fail(err)
		}
		fmt.Println(url.String())
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported download formats",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		formats, err := newAPIClient(serverURL).Formats()
		if err != nil {
			fail(err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FORMAT\tCONTENT TYPE\tAUDIO ONLY")
		for _, f := range formats {
			fmt.Fprintf(w, "%s\t%s\t%v\n", f.Format, f.ContentType, f.AudioOnly)
		}
		w.Flush()
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server and engine readiness",
	Run: func(cmd *cobra.Command, args []string) {
		body, ready, err := newAPIClient(serverURL).Ready()
		if err != nil {
			fail(err)
		}

		fmt.Printf("Server:  %s\n", serverURL)
		fmt.Printf("Status:  %v\n", body["status"])
		if reason, ok := body["reason"]; ok {
			fmt.Printf("Reason:  %v\n", reason)
		}
		if !ready {
			os.Exit(1)
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage server configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with default values",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := filepath.Join("configs", "config.yaml")
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(path); err == nil && !force {
			fail(fmt.Errorf("%s already exists (use --force to overwrite)", path))
		}

		if err := app.SaveConfig(domain.DefaultConfig(), path); err != nil {
			fail(err)
		}
		fmt.Printf("Config written to %s\n", path)
	},
}

func init() {
	infoCmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	downloadCmd.Flags().StringP("format", "f", string(domain.FormatMP4), "Format (mp4, webm, mp3)")
	downloadCmd.Flags().StringP("title", "t", "", "Title used for the file name (looked up when empty)")
	downloadCmd.Flags().StringP("output", "o", ".", "Output directory")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
