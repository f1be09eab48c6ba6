// Package tts wraps the text-to-speech service used to narrate segments.
package tts
