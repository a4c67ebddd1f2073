package cmd

import (
	"keel/common"
	"keel/eval"
	"keel/generate"
	"keel/mods"
	"keel/report"
	"os"

	"github.com/ComedicChimera/olive"
)

// Execute is the main entry point for the `keel` CLI utility
func Execute() {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("keel", "keel is a tool for compiling Keel modules", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, report.LogLevelNames)
	logLvlArg.SetDefaultValue("verbose")

	checkCmd := cli.AddSubcommand("check", "check a module and output errors", true)
	checkCmd.AddPrimaryArg("module-path", "the path to the module to check", true)

	runCmd := cli.AddSubcommand("run", "compile a module and evaluate its script", true)
	runCmd.AddPrimaryArg("module-path", "the path to the module to run", true)

	emitCmd := cli.AddSubcommand("emit", "compile a module to LLVM IR", true)
	emitCmd.AddPrimaryArg("module-path", "the path to the module to emit", true)
	emitCmd.AddStringArg("output", "o", "the path to save the LLVM module to", false)
	emitCmd.AddFlag("stdout", "s", "print the LLVM module to standard out")

	initCmd := cli.AddSubcommand("init", "initialize a module in the working directory", true)
	initCmd.AddPrimaryArg("module-name", "the name of the new module", true)

	cli.AddSubcommand("version", "print the Keel version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.InitReporter(report.LogLevelVerbose)
		report.ReportFatal("%s", err)
	}

	// initialize the reporter
	report.InitReporter(report.LogLevelFromName(result.Arguments["loglevel"].(string)))

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "check":
		execCheckCommand(subResult)
	case "run":
		execRunCommand(subResult)
	case "emit":
		execEmitCommand(subResult)
	case "init":
		execInitCommand(subResult)
	case "version":
		report.DisplayInfoMessage("Keel Version", common.KeelVersion)
	}
}

// execCheckCommand executes the check subcommand: the module is compiled but
// nothing is emitted.
func execCheckCommand(result *olive.ArgParseResult) {
	modulePath, _ := result.PrimaryArg()
	c := newCompiler(modulePath)

	report.DisplayHeader("checking " + c.mod.Name)
	c.analyze()
	c.finish()
}

// execRunCommand executes the run subcommand: the module is compiled and its
// script is evaluated.  The result of the script is displayed if it has one.
func execRunCommand(result *olive.ArgParseResult) {
	modulePath, _ := result.PrimaryArg()
	c := newCompiler(modulePath)

	report.DisplayHeader("running " + c.mod.Name)

	ev := eval.NewEvaluator(os.Stdout)
	if c.analyze() && c.emit(ev) && ev.Result != nil {
		report.DisplayInfoMessage("Result", eval.FormatValue(ev.Result))
	}

	c.finish()
}

// execEmitCommand executes the emit subcommand: the module is compiled to an
// LLVM module.  An explicit output path allows the module to be saved.
func execEmitCommand(result *olive.ArgParseResult) {
	modulePath, _ := result.PrimaryArg()
	c := newCompiler(modulePath)

	outputPath := c.mod.OutputPath
	if outputArg, ok := result.Arguments["output"]; ok {
		outputPath = outputArg.(string)
		c.mod.Options.AllowSave = true
	}

	toStdout := result.HasFlag("stdout")
	if !toStdout && (!c.mod.Options.AllowSave || outputPath == "") {
		report.ReportWarning("emit", "module `%s` does not allow saving its output: nothing will be written", c.mod.Name)
	}

	report.DisplayHeader("emitting " + c.mod.Name)

	var gen *generate.Generator
	if toStdout {
		gen = generate.NewGenerator(os.Stdout, outputPath)
	} else {
		gen = generate.NewGenerator(nil, outputPath)
	}

	if c.analyze() {
		c.emit(gen)
	}

	c.finish()
}

// execInitCommand executes the init subcommand.
func execInitCommand(result *olive.ArgParseResult) {
	workDir, err := os.Getwd()
	if err != nil {
		report.ReportFatal("path error: %s", err)
	}

	modName, _ := result.PrimaryArg()
	if err := mods.InitModule(modName, workDir); err != nil {
		report.ReportFatal("module init error: %s", err)
	}

	report.DisplayInfoMessage("Module Created", modName)
}
