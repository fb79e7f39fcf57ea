package bind

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vulntor/siteprint/pkg/fingerprint"
)

// SyncOptions holds configuration options for the catalog sync command.
type SyncOptions struct {
	FilePath string
	URL      string
	CacheDir string
	Strict   bool
}

// BindSyncOptions extracts and validates catalog sync flags.
//
// Flags read:
//   - --file: Load the rule catalog from a local file
//   - --url: Download the rule catalog from a remote URL
//   - --cache-dir: Override the catalog cache destination directory
//   - --strict: Treat validation warnings as errors
//
// Exactly one of --file and --url must be set.
func BindSyncOptions(cmd *cobra.Command) (SyncOptions, error) {
	filePath, _ := cmd.Flags().GetString("file")
	url, _ := cmd.Flags().GetString("url")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	strict, _ := cmd.Flags().GetBool("strict")

	opts := SyncOptions{
		FilePath: filePath,
		URL:      url,
		CacheDir: cacheDir,
		Strict:   strict,
	}

	if filePath == "" && url == "" {
		return opts, fingerprint.NewSourceRequiredError()
	}

	if filePath != "" && url != "" {
		return opts, fingerprint.NewSourceConflictError()
	}

	return opts, nil
}

// ValidateOptions holds the catalog validate inputs. With no files the active catalog
// is validated.
type ValidateOptions struct {
	RulesFiles   []string
	CookiesFiles []string
	Strict       bool
}

// BindValidateOptions reads positional rules files plus --cookies and --strict.
func BindValidateOptions(cmd *cobra.Command, args []string) (ValidateOptions, error) {
	cookies, _ := cmd.Flags().GetStringSlice("cookies")
	strict, _ := cmd.Flags().GetBool("strict")

	return ValidateOptions{
		RulesFiles:   append([]string(nil), args...),
		CookiesFiles: cookies,
		Strict:       strict,
	}, nil
}

// RulesOptions filters the catalog rules listing.
type RulesOptions struct {
	Category fingerprint.Category
}

// BindRulesOptions validates --category against the known categories.
func BindRulesOptions(cmd *cobra.Command) (RulesOptions, error) {
	category, _ := cmd.Flags().GetString("category")
	if category == "" {
		return RulesOptions{}, nil
	}
	c := fingerprint.Category(category)
	if !c.Valid() {
		return RulesOptions{}, fmt.Errorf("invalid category %q (one of %s)", category, categoryList())
	}
	return RulesOptions{Category: c}, nil
}

func categoryList() string {
	names := make([]string, 0, len(fingerprint.Categories()))
	for _, c := range fingerprint.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
