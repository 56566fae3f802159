// rustmk is a build orchestrator for Rust crates that replaces
// the usual Makefile-plus-rust.mk arrangement with a single Go
// binary. It discovers the crate's canonical name and output
// filename by invoking the compiler in query mode, compiles the
// library with dependency-file tracking, and wires up example and
// test targets when the corresponding sources exist.
//
// Build concepts:
//
// Crate
// A compiled unit of source code rooted at src/lib.rs. The crate's
// name and dynamic-library filename are owned by the compiler and
// are never guessed from the directory name.
//
// Goal
// A named group of build steps requested on the command line:
// "all" builds the crate and its examples, "check" builds and runs
// the crate's test binaries, "examples" builds only the example
// programs, "clean" removes the output directory. Goals do not
// correspond to produced files.
//
// Step
// A single compiler invocation with one primary output. Steps run
// sequentially; the first failing step aborts the remaining goal
// graph and the process exits with the compiler's status.
//
// Dependency file
// Compiler-emitted metadata listing a source file's import
// dependencies. A step is skipped when its output is newer than
// every recorded dependency.
package rustmk
