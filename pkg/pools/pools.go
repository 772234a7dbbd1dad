// Package pools recycles the byte buffers assets are read into.
//
// A batch run loads thousands of small files, mostly images under a few
// hundred kilobytes and audio of a few megabytes. Buffers are grouped in
// size classes so a worker reading a 40 KiB icon does not pin an 8 MiB
// music buffer.
package pools
