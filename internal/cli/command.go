package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhandary/JLPT/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "babelfish [files...]",
		Short: "Bilingual flashcard video generator",
		Long: `babelfish turns CSV word lists into listening material.

Each row is spoken in the source language, followed by a pause and its
translation. The result is rendered as a captioned video, an audio-only
track or an Anki deck.

Examples:
  babelfish -c -v -s jp n5.csv          # CSVs and a captioned video
  babelfish -a -s de -f a.csv -f b.csv  # audio-only tracks for two lists
  babelfish --anki --deck-name N5 n5.csv
  babelfish --list-voices ja-JP`,
		Args:    cobra.ArbitraryArgs,
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.babelfish.yaml)")

	// Input and outputs
	cmd.Flags().StringArrayVarP(&flags.Files, "file", "f", nil, "Input word list (repeatable)")
	cmd.Flags().BoolVarP(&flags.Debug, "debug", "d", false, "Verbose mode: debug logging and echo every pair")
	cmd.Flags().BoolVarP(&flags.GenerateCSV, "csv", "c", false, "Write the projected CSV files")
	cmd.Flags().BoolVarP(&flags.GenerateVideo, "video", "v", false, "Render the captioned video")
	cmd.Flags().BoolVarP(&flags.GenerateAudio, "audio", "a", false, "Write an audio-only track (WAV and M4A)")
	cmd.Flags().StringVarP(&flags.SourceLanguage, "source-language", "s", flags.SourceLanguage, "Source language of the input files (jp or de)")
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory")

	// Anki export
	cmd.Flags().BoolVar(&flags.GenerateAnki, "anki", false, "Generate an Anki deck (APKG format by default, use --anki-csv for legacy CSV)")
	cmd.Flags().BoolVar(&flags.AnkiCSV, "anki-csv", false, "Generate legacy CSV format instead of APKG when using --anki")
	cmd.Flags().StringVar(&flags.DeckName, "deck-name", "", "Deck name for APKG export (default: input file name)")

	// Speech and rendering
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Speech provider: google, openai, gemini or espeak")
	cmd.Flags().Float64Var(&flags.Silence, "silence", flags.Silence, "Pause between spoken words in seconds")
	cmd.Flags().StringVar(&flags.Font, "font", flags.Font, "Caption font file or family")
	cmd.Flags().BoolVar(&flags.KeepTemp, "keep-temp", false, "Keep per-file work directories")
	cmd.Flags().BoolVar(&flags.Cache, "cache", false, "Cache synthesized speech on disk")

	// Maintenance
	cmd.Flags().StringVar(&flags.ListVoices, "list-voices", "", "List available voices, optionally for one language code")
	cmd.Flags().Lookup("list-voices").NoOptDefVal = "all"
	cmd.Flags().BoolVar(&flags.ArchiveTemp, "archive-temp", false, "Move leftover work directories to <output>/archive")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("output.directory", cmd.Flags().Lookup("output"))
	viper.BindPFlag("tts.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("tts.enable_cache", cmd.Flags().Lookup("cache"))
	viper.BindPFlag("silence_seconds", cmd.Flags().Lookup("silence"))
	viper.BindPFlag("caption.font", cmd.Flags().Lookup("font"))
	viper.BindPFlag("keep_temp", cmd.Flags().Lookup("keep-temp"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".babelfish" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".babelfish")
	}

	// Environment variables, e.g. BABELFISH_TTS_PROVIDER
	viper.SetEnvPrefix("BABELFISH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("tts.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("tts.gemini_key")
}
