package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/freespeech/internal/subtitle"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [document]",
	Short: "Write a track as an SRT, VTT or ASS subtitle file",
	Long: `Write one track of the document as a subtitle file.

ASS output keeps per-word size factors as \fscx/\fscy overrides. SRT and
VTT carry the text only.

Examples:
  freespeech export talk
  freespeech export talk --track 1 --format ass -o talk.fr.ass`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [document] [subtitle_file]",
	Short: "Add the entries of a subtitle file to a track",
	Long: `Read an SRT, VTT or ASS file and add each entry to a track of the
document as a timed text. Word sizes from ASS \fscx overrides are kept.

Examples:
  freespeech import talk talk.srt
  freespeech import talk talk.ja.ass --track 1 --replace`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)

	exportCmd.Flags().Int("track", 0, "Track to export")
	exportCmd.Flags().StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
	exportCmd.Flags().StringP("output", "o", "", "Output file path (default next to the document)")
	exportCmd.Flags().StringP("language", "l", "", "Language code recorded in the subtitle")

	importCmd.Flags().Int("track", 0, "Track to add to")
	importCmd.Flags().Bool("replace", false, "Remove the existing texts of the track first")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	track, _ := cmd.Flags().GetInt("track")
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")

	format, err := subtitle.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	if outputPath != "" {
		if format, err = subtitle.FormatFromPath(outputPath); err != nil {
			return err
		}
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	doc, err := s.open(ctx, args[0])
	if err != nil {
		return err
	}

	var sub *subtitle.Subtitle
	err = s.do(ctx, func() error {
		sub, err = subtitle.FromTrack(doc, track)
		return err
	})
	if err != nil {
		return err
	}
	sub.Language = language
	sub.Format = format

	if outputPath == "" {
		outputPath = strings.TrimSuffix(doc.Pathname(), filepath.Ext(doc.Pathname())) + format.Extension()
	}
	if err := subtitle.WriteFile(sub, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	acknowledge(cmd.OutOrStdout(), "Subtitles exported successfully: %s", absOutput)
	fmt.Fprintf(cmd.OutOrStdout(), "  Entries: %d\n", len(sub.Entries))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	track, _ := cmd.Flags().GetInt("track")
	replace, _ := cmd.Flags().GetBool("replace")

	sub, err := subtitle.ReadFile(args[1])
	if err != nil {
		return err
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	doc, err := s.open(ctx, args[0])
	if err != nil {
		return err
	}

	var added int
	err = s.do(ctx, func() error {
		if replace {
			if err := clearTrack(doc, track); err != nil {
				return err
			}
		}
		added, err = subtitle.ToTrack(doc, track, sub)
		if err != nil {
			return err
		}
		return s.op.Save(doc)
	})
	if err != nil {
		return err
	}

	acknowledge(cmd.OutOrStdout(), "Imported %d of %d entries into track %d", added, len(sub.Entries), track)
	return nil
}
