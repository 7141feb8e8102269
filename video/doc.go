// Package video provides frame processing for the dizzy feedback effect.
//
// This package implements the complete per-frame pipeline: conversion into
// a fixed packed pixel layout, the warp parameter solver, the warp blender
// and the stateful effect that ties them together.
//
// # Architecture Overview
//
//	Input Frame → Convert → DizzyEffect (solve → blend → update state) → Output Frame
//
// Each stage is a composable component that can be used independently or
// through a Processor.
//
// # Frames
//
// Frames hold packed 32-bit pixels, row-major with no padding:
//
//	frame := &video.Frame{
//	    Width:  640,
//	    Height: 480,
//	    Format: video.FormatBGRA, // word 0xAARRGGBB
//	    Pixels: pixels,           // len(pixels) == 640*480
//	    PTS:    pts,
//	    Index:  seq,
//	}
//
// PTS, TimeBase, Index and TraceID are forwarded unchanged to the frame an
// effect derives from the input.
//
// # Warp Parameters
//
// SolveWarp computes the 16.16 fixed-point scan increments and origin for a
// phase value:
//
//	params, err := video.SolveWarp(phase, video.DefaultZoomRate, 640, 480)
//
// BlendWarp walks the output frame, samples the previous frame through those
// parameters and mixes 75% of the sample with 25% of the current pixel:
//
//	out, err := video.BlendWarp(current, previous, params)
//
// Sample indices that leave the frame are clamped to the first or last
// pixel of the previous frame.
//
// # Dizzy Effect
//
// DizzyEffect owns the phase and the previous output frame:
//
//	effect := video.NewDizzyEffect()
//	for frame := range frames {
//	    out, err := effect.Apply(frame)
//	    if err != nil {
//	        return fmt.Errorf("dizzy failed: %w", err)
//	    }
//	    emit(out)
//	}
//
// The first frame, and the first frame after the geometry or pixel format
// changes, is emitted unchanged and seeds the feedback loop.
//
// # Processor
//
// Processor serializes conversion and effects for one stream:
//
//	processor := video.NewProcessor(video.NewPackedConverter(), video.NewDizzyEffect())
//	out, err := processor.ProcessFrame(frame)
//
// # Thread Safety
//
// DizzyEffect and EffectChain are not safe for concurrent use. Processor
// guards them with a mutex; reconfigure effects through Processor.Do while
// frames are flowing.
package video
