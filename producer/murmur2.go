// The murmur2 hash below follows the partitioner of
// https://github.com/burdiyan/kafkautil, licensed under the MIT license:
//
// MIT License
//
// Copyright (c) 2019 Alexandr Burdiyan
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package producer

import (
	"encoding/binary"
	"hash"

	"github.com/Shopify/sarama"
)

// NewJVMCompatiblePartitioner creates a Sarama partitioner that uses
// the same hashing algorithm as JVM Kafka clients, so that a key lands
// on the same partition whichever client produced it.
func NewJVMCompatiblePartitioner(topic string) sarama.Partitioner {
	return sarama.NewCustomHashPartitioner(MurmurHasher)(topic)
}

// MurmurHasher returns a hash.Hash32 computing the positive murmur2 hash
// of the data written to it, as the JVM clients do.
// It does not support streaming: each Write replaces the sum. Sarama
// writes message keys in a single call, which is all it needs.
func MurmurHasher() hash.Hash32 {
	return new(murmurHash)
}

type murmurHash struct {
	sum uint32
}

func (h *murmurHash) Write(data []byte) (int, error) {
	h.sum = murmur2(data) & 0x7fffffff
	return len(data), nil
}

func (h *murmurHash) Sum(b []byte) []byte {
	return binary.BigEndian.AppendUint32(b, h.sum)
}

func (h *murmurHash) Sum32() uint32 { return h.sum }

func (h *murmurHash) Reset() { h.sum = 0 }

func (h *murmurHash) Size() int { return 4 }

func (h *murmurHash) BlockSize() int { return 4 }

// murmur2 implements the hash of org.apache.kafka.common.utils.Utils.murmur2.
// Java ints wrap on overflow like uint32 does and >>> is the unsigned
// shift, so the result matches bit for bit.
func murmur2(data []byte) uint32 {
	const (
		seed uint32 = 0x9747b28c
		m    uint32 = 0x5bd1e995
		r           = 24
	)

	h := seed ^ uint32(len(data))
	for ; len(data) >= 4; data = data[4:] {
		k := binary.LittleEndian.Uint32(data)
		k *= m
		k ^= k >> r
		k *= m
		h *= m
		h ^= k
	}

	switch len(data) {
	case 3:
		h ^= uint32(data[2]) << 16
		fallthrough
	case 2:
		h ^= uint32(data[1]) << 8
		fallthrough
	case 1:
		h ^= uint32(data[0])
		h *= m
	}

	h ^= h >> 13
	h *= m
	h ^= h >> 15
	return h
}
