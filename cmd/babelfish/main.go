package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhandary/JLPT/internal/archive"
	"github.com/abhandary/JLPT/internal/audio"
	"github.com/abhandary/JLPT/internal/cli"
	"github.com/abhandary/JLPT/internal/config"
	"github.com/abhandary/JLPT/internal/logging"
	"github.com/abhandary/JLPT/internal/media"
	"github.com/abhandary/JLPT/internal/pipeline"
	"github.com/abhandary/JLPT/internal/tts"
	"github.com/abhandary/JLPT/internal/voices"
)

func main() {
	flags := cli.NewFlags()

	rootCmd := cli.CreateRootCommand(flags)
	rootCmd.SilenceUsage = true

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.New(logging.Options{Level: logging.Level(flags.Debug)})

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	if flags.ArchiveTemp {
		path, err := archive.ArchiveTemp(cfg.Output.Directory)
		if err != nil {
			return fmt.Errorf("failed to archive work directories: %w", err)
		}
		fmt.Printf("Work directories archived to: %s\n", path)
		return nil
	}

	if flags.ListVoices != "" {
		return listVoices(ctx, cfg, flags.VoiceLanguage(args))
	}

	files := flags.InputFiles(args)
	if len(files) == 0 {
		return errors.New("no input files: pass word lists as arguments or with --file")
	}
	if !flags.WantsOutput() {
		return errors.New("nothing to do: enable at least one of --csv, --video, --audio or --anki")
	}

	p, err := buildPipeline(ctx, cfg, flags, log)
	if err != nil {
		return err
	}

	summary, err := p.Run(ctx, files)
	if summary != nil {
		summary.Print(os.Stdout)
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nDone! Output saved to: %s\n", cfg.Output.Directory)
	return nil
}

func buildPipeline(ctx context.Context, cfg *config.Config, flags *cli.Flags, log zerolog.Logger) (*pipeline.Pipeline, error) {
	lang, err := cfg.Language(flags.SourceLanguage)
	if err != nil {
		return nil, err
	}
	source, target := lang.Voices()

	pcfg := pipeline.Config{
		SourceVoice:   source,
		TargetVoice:   target,
		Silence:       cfg.Silence(),
		Format:        audio.Format{SampleRate: cfg.TTS.SampleRate, Channels: 1, SampleWidth: 2},
		OutputRoot:    cfg.Output.Directory,
		AllowTriple:   lang.Triple,
		GenerateCSV:   flags.GenerateCSV,
		GenerateVideo: flags.GenerateVideo,
		GenerateAudio: flags.GenerateAudio,
		GenerateAnki:  flags.GenerateAnki,
		AnkiCSV:       flags.AnkiCSV,
		DeckName:      flags.DeckName,
		KeepTemp:      cfg.KeepTemp,
		Debug:         flags.Debug,
	}

	var deps pipeline.Deps

	if flags.GenerateVideo || flags.GenerateAudio || flags.GenerateAnki {
		provider, err := tts.NewProvider(ctx, cfg.ProviderConfig(cli.GetOpenAIKey(), cli.GetGeminiKey()), log)
		if err != nil {
			return nil, fmt.Errorf("failed to create speech provider: %w", err)
		}
		if err := provider.IsAvailable(); err != nil {
			return nil, fmt.Errorf("speech provider %s is not available: %w", provider.Name(), err)
		}
		log.Info().Str("provider", provider.Name()).Str("source", source.Name).Str("target", target.Name).Msg("speech provider ready")
		deps.Synth = provider
	}

	if flags.GenerateVideo || flags.GenerateAudio {
		tools := media.NewToolchain(cfg.Media.FFmpeg, cfg.Media.FFprobe, log)
		if err := tools.CheckInstalled(); err != nil {
			return nil, err
		}

		if flags.GenerateVideo {
			composer, err := media.NewComposer(tools, cfg.CaptionStyle())
			if err != nil {
				return nil, err
			}
			deps.Renderer = composer
			deps.Concat = media.NewConcatenator(tools)
			deps.Verifier = tools
		}
		if flags.GenerateAudio {
			deps.Encoder = tools
		}
	}

	return pipeline.New(pcfg, deps, log)
}

func listVoices(ctx context.Context, cfg *config.Config, language string) error {
	provider := strings.ToLower(cfg.TTS.Provider)
	if provider != "google" && provider != "" {
		return voices.NewLister(provider, nil, os.Stdout).List(ctx, language)
	}

	google, err := tts.NewGoogleProvider(ctx, cfg.ProviderConfig(cli.GetOpenAIKey(), cli.GetGeminiKey()))
	if err != nil {
		return err
	}
	defer google.Close()

	return voices.NewLister("google", google, os.Stdout).List(ctx, language)
}
