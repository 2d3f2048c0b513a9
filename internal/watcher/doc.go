// Package watcher feeds decks dropped into the inbox directory to the job
// queue in watch mode.
package watcher
