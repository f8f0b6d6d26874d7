// Package timeline buckets timed text into fixed intervals and formats
// clock labels. Every function is pure: identical input yields
// byte-identical output.
package timeline
