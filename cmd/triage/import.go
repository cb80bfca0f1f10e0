package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tabeebchat/triage/internal/artifact"
	"github.com/tabeebchat/triage/internal/config"
	"github.com/tabeebchat/triage/internal/model"
	"github.com/tabeebchat/triage/internal/storage"
	"github.com/tabeebchat/triage/internal/vectorizer"
)

const importBatchSize = 5000

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <qa_database.csv>",
		Short: "Build the SQLite corpus and vector artifacts from a CSV export",
		Long: `Convert the training job's CSV export (question,answer,category rows,
header required) into the serving artifacts: the Q&A corpus database and
the row-aligned retrieval vector database. Vectors are computed with the
vocabulary and IDF table from the configured classifier bundle, so the
output is guaranteed to be consistent with the model that will serve it.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("corpus-out", "", "output path for the corpus database (default: artifacts.corpus)")
	cmd.Flags().String("vectors-out", "", "output path for the vector database (default: artifacts.vectors)")
	_ = viper.BindPFlag("import.corpus_out", cmd.Flags().Lookup("corpus-out"))
	_ = viper.BindPFlag("import.vectors_out", cmd.Flags().Lookup("vectors-out"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	paths, err := config.ArtifactPaths()
	if err != nil {
		return err
	}

	corpusOut := viper.GetString("import.corpus_out")
	if corpusOut == "" {
		corpusOut = paths.Corpus
	}
	vectorsOut := viper.GetString("import.vectors_out")
	if vectorsOut == "" {
		vectorsOut = paths.Vectors
	}

	bundle, err := artifact.ReadClassifierBundle(paths.ClassifierBundle)
	if err != nil {
		return err
	}
	vec, err := vectorizer.New(bundle.Vocabulary, bundle.IDF)
	if err != nil {
		return fmt.Errorf("classifier bundle is unusable: %w", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open CSV export: %w", err)
	}
	defer func() { _ = f.Close() }()

	corpus, err := storage.Open(corpusOut)
	if err != nil {
		return err
	}
	defer func() { _ = corpus.Close() }()
	if err := corpus.Migrate(ctx); err != nil {
		return err
	}

	vectors, err := storage.Open(vectorsOut)
	if err != nil {
		return err
	}
	defer func() { _ = vectors.Close() }()
	if err := vectors.Migrate(ctx); err != nil {
		return err
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	if header[0] != "question" || header[1] != "answer" || header[2] != "category" {
		return fmt.Errorf("unexpected CSV header %v, want [question answer category]", header)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("importing corpus"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var (
		batch    []model.ReferenceRecord
		batchVec []model.SparseVector
		total    int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		offset := total - len(batch)
		if err := corpus.SaveQARecords(ctx, offset, batch); err != nil {
			return err
		}
		if err := vectors.SaveVectors(ctx, offset, batchVec); err != nil {
			return err
		}
		batch = batch[:0]
		batchVec = batchVec[:0]
		return nil
	}

	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("failed to read CSV row %d: %w", total+1, readErr)
		}

		rec := model.ReferenceRecord{Question: row[0], Answer: row[1], Category: row[2]}
		batch = append(batch, rec)
		batchVec = append(batchVec, vec.Vectorize(rec.Question))
		total++
		_ = bar.Add(1)

		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	_ = bar.Finish()

	slog.Info("Import complete", "records", total, "corpus", corpusOut, "vectors", vectorsOut)
	return nil
}
