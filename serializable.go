package zeroeq

// Serializable 可序列化对象
//
// TypeID 通常为 MakeTypeID(TypeName())。ToBinary 返回空时按无负载发送。
type Serializable interface {
	TypeName() string
	TypeID() TypeID
	ToBinary() ([]byte, error)
	FromBinary(data []byte) error
}

// payloadOf 序列化对象，空结果视为无负载
func payloadOf(obj Serializable) ([]byte, error) {
	data, err := obj.ToBinary()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// ReplyObject 以对象作为应答
func ReplyObject(obj Serializable) (ReplyData, error) {
	data, err := payloadOf(obj)
	if err != nil {
		return ReplyData{}, err
	}
	return ReplyData{TypeID: obj.TypeID(), Payload: data}, nil
}
