// Package lib provides a Go SDK to batch convert Havok animation files
// programmatically.
//
// It runs the same conversions as the hkxbatch CLI without shelling out to it, so
// applications (mod managers, GUIs, scripts) can drive the converter tools and
// follow the progress of every file.
//
// # Quick Start
//
// Create a client, start a batch and read its progress:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	batch, err := client.Convert(ctx, lib.ConvertOpts{
//	    Inputs:     []string{"/mods/animations"},
//	    Recursive:  true,
//	    OutputRoot: "/mods/animations_se",
//	    Tool:       lib.ToolHkxCmd,
//	    Format:     lib.FormatSkyrimSE,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for ev := range batch.Events() {
//	    fmt.Printf("[%d/%d] %s %s\n", ev.Index+1, ev.Total, ev.Kind, ev.File)
//	}
//	outcome := batch.Wait()
//	fmt.Println(outcome.Message)
//
// # Tools
//
// [Tools] lists the converter tools with the input extensions they accept and the
// formats they produce. It has no side effects and can be used to fill selection
// menus.
//
// The executables are expected in ~/.hkxbatch/tools by default. A YAML file
// (~/.hkxbatch/config.yaml or [Config].ConfigPath) can point to other locations
// and set a launcher (e.g. wine) for non Windows hosts:
//
//	tools_dir: /opt/havok
//	launcher: [wine]
//	tools:
//	  hkxcmd: hkxcmd-1.5.exe
//
// [Client.Doctor] checks the tools and their assets are in place.
//
// # Cancellation
//
// [Batch.Cancel] (or cancelling the context passed to [Client.Convert]) stops
// starting new files. Files already being converted finish, then a single
// [EventCancelled] event closes the progress stream.
//
// # Engines
//
//   - [EngineExec]: Runs the real converter executables (default).
//   - [EngineFake]: Simulates the converters writing small output files. No tools
//     needed. Set [Config].Engine to [EngineFake] to use it in tests.
//
// # History
//
// Setting [Config].HistoryDBPath saves every finished batch in a SQLite database,
// [Client.History] reads them back.
//
// # Errors
//
// Errors can be checked with [errors.Is] against the package sentinel errors
// ([ErrNotValid], [ErrNotFound], [ErrToolFailed]...). Failed files don't fail the
// batch, their error is in [JobOutcome].Err.
package lib
