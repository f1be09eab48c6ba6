// Package ffmpeg drives the audio/video processing tool for silent-audio
// synthesis, ordered concatenation, and final muxing.
package ffmpeg
