// Copyright (c) Microsoft Corporation.
// Licensed under the MIT license.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kaito-project/datasetkit/pkg/featuregates"
	"github.com/kaito-project/datasetkit/pkg/metrics"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// so ConfigMap options work against any kubeconfig.
	_ "k8s.io/client-go/plugin/pkg/client/auth"
)

var (
	scheme = runtime.NewScheme()

	exitWithErrorFunc = func() {
		klog.Flush()
		os.Exit(1)
	}
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	klog.InitFlags(nil)
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [global flags] <command> [flags]\n\nCommands:\n", os.Args[0])
	for _, c := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(out, "\nGlobal flags:")
	flag.PrintDefaults()
}

func main() {
	var featureGates string
	var metricsTextfile string
	flag.StringVar(&featureGates, "feature-gates", "", "Enable datasetkit feature gates, e.g. SkipBlankLines=true.")
	flag.StringVar(&metricsTextfile, "metrics-textfile", "", "Write run metrics in the Prometheus text format to this file on exit.")
	flag.Usage = usage
	flag.Parse()

	if err := featuregates.ParseAndValidateFeatureGates(featureGates); err != nil {
		klog.ErrorS(err, "unable to parse `feature-gates` flag")
		exitWithErrorFunc()
	}

	err := run(ctrl.SetupSignalHandler(), flag.Args(), os.Stdout)

	if metricsTextfile != "" {
		if werr := metrics.WriteTextfile(metricsTextfile); werr != nil {
			klog.ErrorS(werr, "unable to write metrics textfile", "path", metricsTextfile)
		}
	}
	if err != nil {
		klog.ErrorS(err, "command failed")
		exitWithErrorFunc()
	}
	klog.Flush()
}
