// Package pipeline provides a framework for executing crawl stages in sequence.
//
// A contact discovery run is processed through multiple stages: crawling the
// seed's domain, aggregating raw facts into deduplicated results, and
// persisting to the local database. Each stage is implemented as a Step that
// receives the current report and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running crawls
//
// The pipeline supports both individual seeds and batch processing with
// concurrency control using errgroup.
package pipeline
