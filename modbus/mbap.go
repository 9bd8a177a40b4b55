package modbus

import (
	"encoding/binary"
	"io"
)

// MBAP (Modbus Application Protocol) header layout:
//
//	bytes 0-1  transaction identifier
//	bytes 2-3  protocol identifier (always 0)
//	bytes 4-5  length (unit identifier + PDU)
//	byte  6    unit identifier
const (
	mbapHeaderSize = 7
	maxADUSize     = mbapHeaderSize + maxPDUSize
)

// mbapFrame is one parsed application data unit.
type mbapFrame struct {
	txID uint16
	unit UnitID
	pdu  []byte
}

// buildMBAP prepends an MBAP header to pdu.
func buildMBAP(txID uint16, unit UnitID, pdu []byte) []byte {
	adu := make([]byte, mbapHeaderSize+len(pdu))
	binary.BigEndian.PutUint16(adu[0:2], txID)
	binary.BigEndian.PutUint16(adu[2:4], 0) // protocol identifier
	binary.BigEndian.PutUint16(adu[4:6], uint16(1+len(pdu)))
	adu[6] = byte(unit)
	copy(adu[mbapHeaderSize:], pdu)
	return adu
}

// parseMBAPHeader validates the 7-byte header and returns the frame with an
// empty PDU plus the PDU length that follows.
func parseMBAPHeader(hdr []byte) (mbapFrame, int, error) {
	protocolID := binary.BigEndian.Uint16(hdr[2:4])
	if protocolID != 0 {
		return mbapFrame{}, 0, frameErrorf("MBAP protocol identifier is %d, expected 0", protocolID)
	}

	length := int(binary.BigEndian.Uint16(hdr[4:6]))
	if length < 2 || length > maxPDUSize+1 {
		return mbapFrame{}, 0, frameErrorf("MBAP length %d out of range", length)
	}

	frame := mbapFrame{
		txID: binary.BigEndian.Uint16(hdr[0:2]),
		unit: UnitID(hdr[6]),
	}
	return frame, length - 1, nil
}

// readMBAP reads one complete frame from a byte stream.
func readMBAP(r io.Reader) (mbapFrame, error) {
	hdr := make([]byte, mbapHeaderSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return mbapFrame{}, err
	}

	frame, pduLen, err := parseMBAPHeader(hdr)
	if err != nil {
		return mbapFrame{}, err
	}

	frame.pdu = make([]byte, pduLen)
	if _, err := io.ReadFull(r, frame.pdu); err != nil {
		return mbapFrame{}, err
	}
	return frame, nil
}

// parseMBAP parses one complete frame from a message-oriented transport,
// where the whole ADU arrives as a single datagram.
func parseMBAP(adu []byte) (mbapFrame, error) {
	if len(adu) < mbapHeaderSize {
		return mbapFrame{}, frameErrorf("ADU of %d bytes is shorter than the MBAP header", len(adu))
	}

	frame, pduLen, err := parseMBAPHeader(adu[:mbapHeaderSize])
	if err != nil {
		return mbapFrame{}, err
	}

	if len(adu) != mbapHeaderSize+pduLen {
		return mbapFrame{}, frameErrorf("ADU carries %d PDU bytes, header says %d", len(adu)-mbapHeaderSize, pduLen)
	}
	frame.pdu = adu[mbapHeaderSize:]
	return frame, nil
}
