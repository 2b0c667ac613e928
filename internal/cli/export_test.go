package cli

// Export internal functions for testing.

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// DefaultOutputName exports defaultOutputName for testing.
var DefaultOutputName = defaultOutputName

// ResolveOutput exports resolveOutput for testing.
var ResolveOutput = resolveOutput

// WriteReport exports writeReport for testing.
var WriteReport = writeReport

// InputPath exports inputPath for testing.
var InputPath = inputPath

// CheckInput exports checkInput for testing.
var CheckInput = checkInput
