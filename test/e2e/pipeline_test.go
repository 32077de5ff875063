// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.

package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/kaito-project/datasetkit/pkg/utils/consts"
	"github.com/kaito-project/datasetkit/test/e2e/utils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
	"github.com/onsi/gomega/gexec"
)

func runDatasetkit(args ...string) *gexec.Session {
	GinkgoHelper()
	cmd := exec.Command(datasetkitPath, args...)
	cmd.Env = append(os.Environ(), consts.ConfigEnvVar+"=")
	session, err := gexec.Start(cmd, GinkgoWriter, GinkgoWriter)
	Expect(err).NotTo(HaveOccurred())
	Eventually(session, utils.PollTimeout, utils.PollInterval).Should(gexec.Exit())
	return session
}

var _ = Describe("Dataset pipeline", func() {
	var workDir string

	BeforeEach(func() {
		workDir = GinkgoT().TempDir()
	})

	DescribeTable("formats raw records into a dataset that validates",
		func(modelType string) {
			raw, err := utils.WriteLines(workDir, "raw.jsonl", utils.GenerateRawRecords(20))
			Expect(err).NotTo(HaveOccurred())
			formatted := filepath.Join(workDir, "processed", modelType+".jsonl")

			session := runDatasetkit("format", "--input", raw, "--output", formatted, "--model", modelType)
			Expect(session.ExitCode()).To(Equal(0))
			Expect(session.Out).To(gbytes.Say("Formatted 20 records"))

			session = runDatasetkit("validate", "--input", formatted, "--model", modelType)
			Expect(session.ExitCode()).To(Equal(0))
			Expect(session.Out).To(gbytes.Say("is valid"))
		},
		Entry("mistral", consts.ModelTypeMistral),
		Entry("pi", consts.ModelTypePi),
		Entry("gemini", consts.ModelTypeGemini),
	)

	It("splits a formatted dataset into train and validation files", func() {
		raw, err := utils.WriteLines(workDir, "raw.jsonl", utils.GenerateRawRecords(100))
		Expect(err).NotTo(HaveOccurred())
		formatted := filepath.Join(workDir, "mistral.jsonl")
		Expect(runDatasetkit("format", "--input", raw, "--output", formatted, "--model", consts.ModelTypeMistral).ExitCode()).To(Equal(0))

		outDir := filepath.Join(workDir, "split", "mistral")
		metricsFile := filepath.Join(workDir, "metrics.prom")
		session := runDatasetkit("--metrics-textfile", metricsFile, "split", "--input", formatted, "--output-dir", outDir)
		Expect(session.ExitCode()).To(Equal(0))

		train, err := utils.ReadLines(filepath.Join(outDir, consts.TrainFileName))
		Expect(err).NotTo(HaveOccurred())
		val, err := utils.ReadLines(filepath.Join(outDir, consts.ValFileName))
		Expect(err).NotTo(HaveOccurred())
		Expect(train).To(HaveLen(90))
		Expect(val).To(HaveLen(10))

		original, err := utils.ReadLines(formatted)
		Expect(err).NotTo(HaveOccurred())
		union := append(append([]string{}, train...), val...)
		sort.Strings(union)
		sort.Strings(original)
		Expect(union).To(Equal(original))

		metrics, err := os.ReadFile(metricsFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(metrics)).To(ContainSubstring(`datasetkit_split_records_total{subset="val"} 10`))
	})

	It("reports every problem and exits non-zero for an invalid dataset", func() {
		input, err := utils.WriteLines(workDir, "bad.jsonl", []string{
			`{"instruction": "Translate this to French", "input": "Hello, how are you?"}`,
			`{"instruction": "Say hi", "input": "hi", "output": "Hello there, friend."}`,
		})
		Expect(err).NotTo(HaveOccurred())

		session := runDatasetkit("validate", "--input", input, "--model", consts.ModelTypeMistral)
		Expect(session.ExitCode()).To(Equal(1))
		Expect(session.Out).To(gbytes.Say(`Entry 0: Missing fields \['output'\]`))
		Expect(session.Out).To(gbytes.Say(`Entry 1: input too short \(2 chars\)`))
		Expect(session.Out).To(gbytes.Say(`Entry 1: instruction too short \(6 chars\)`))
	})

	It("tolerates blank lines only behind the SkipBlankLines feature gate", func() {
		records := utils.GenerateRawRecords(2)
		input, err := utils.WriteLines(workDir, "blank.jsonl", []string{records[0], "", records[1]})
		Expect(err).NotTo(HaveOccurred())

		session := runDatasetkit("validate", "--input", input)
		Expect(session.ExitCode()).To(Equal(1))
		Expect(session.Out).To(gbytes.Say("Failed to load dataset: line 2"))

		session = runDatasetkit("--feature-gates", consts.FeatureFlagSkipBlankLines+"=true", "validate", "--input", input)
		Expect(session.ExitCode()).To(Equal(0))
	})

	It("renders the fine-tuning backend config and launch command", func() {
		cfg, err := utils.WriteLines(workDir, "trainer.yaml", []string{
			"model_name_or_path: mistralai/Mistral-7B-v0.1",
			"output_dir: /mnt/results",
			"method: qlora",
			"num_train_epochs: 1",
		})
		Expect(err).NotTo(HaveOccurred())
		outDir := filepath.Join(workDir, "tuning")

		session := runDatasetkit("trainer", "--config", cfg, "--output-dir", outDir, "--print-command")
		Expect(session.ExitCode()).To(Equal(0))
		Expect(session.Out).To(gbytes.Say("accelerate launch .* fine_tuning.py .*--TA_num_train_epochs=1"))

		saved, err := os.ReadFile(filepath.Join(outDir, consts.TrainingConfigKey))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(saved)).To(HavePrefix("training_config:\n"))
	})
})
