// Package serialization provides the .born container used to save and load
// sentiment classifiers.
//
//	Format Structure:
//	  0x00 [4 bytes: Magic "BORN"]
//	  0x04 [4 bytes: Version (uint32 LE)]
//	  0x08 [4 bytes: Flags (uint32 LE)]
//	  0x0C [4 bytes: Reserved]
//	  0x10 [8 bytes: Header Size (uint64 LE)]
//	  0x18 [8 bytes: Data Size (uint64 LE)]
//	  0x20 [32 bytes: SHA-256 of the data section]
//	  0x40 [Header: JSON metadata]
//	       [Tensor data: raw little-endian bytes, section start 64-byte aligned]
//
// Tensors are written in name order so the same state dict always produces
// the same data section and checksum.
//
// Example usage:
//
//	// Save a model
//	writer, err := serialization.NewBornWriter("model.born")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = writer.WriteStateDict(model.StateDict(), "RNNClassifier", map[string]string{"config": cfgJSON})
//	writer.Close()
//
//	// Load a model
//	reader, err := serialization.NewBornReader("model.born")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//	stateDict, err := reader.ReadStateDict()
//	model.LoadStateDict(stateDict)
package serialization
