// Package logtail reads the application log back for the dashboard's
// activity view.
//
// Read returns the last N lines of a file with a ring buffer, so memory
// stays proportional to N regardless of file size. Parse understands the
// key=value lines logrus' TextFormatter writes with colors disabled and
// lifts out the time, level, message and component; any other key becomes
// a field. Lines that are not in that shape, such as badger's own output,
// are kept as info entries.
//
//	entries, err := logtail.Tail(cfg.LogPath(), 400, logrus.InfoLevel)
package logtail
