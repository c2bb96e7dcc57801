package locale

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
)

var errJSONRoot = errors.New("root must be an object or array")

func parseJSON(msgs *Messages, data []byte, prefix, file string) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '{':
		return flattenJSONObject(msgs, trimmed, prefix, file)
	case '[':
		return flattenJSONArray(msgs, trimmed, prefix, file)
	}
	return errJSONRoot
}

func flattenJSONObject(msgs *Messages, data []byte, prefix, file string) error {
	return jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}
		return flattenJSONValue(msgs, value, dataType, join(prefix, name), file)
	})
}

func flattenJSONValue(msgs *Messages, value []byte, dataType jsonparser.ValueType, key, file string) error {
	switch dataType {
	case jsonparser.Object:
		return flattenJSONObject(msgs, value, key, file)
	case jsonparser.Array:
		return flattenJSONArray(msgs, value, key, file)
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return err
		}
		msgs.add(key, s, file)
	}
	// Numbers, booleans and null carry no message.
	return nil
}

func flattenJSONArray(msgs *Messages, data []byte, prefix, file string) error {
	var (
		values  [][]byte
		types   []jsonparser.ValueType
		strs    = true
		itemErr error
	)
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if err != nil && itemErr == nil {
			itemErr = err
		}
		values = append(values, value)
		types = append(types, dataType)
		if dataType != jsonparser.String {
			strs = false
		}
	})
	if err != nil {
		return err
	}
	if itemErr != nil {
		return itemErr
	}
	if len(values) == 0 {
		return nil
	}

	// A string array is read as a whole, e.g. with t.raw("benefits").
	if strs && prefix != "" {
		parts := make([]string, len(values))
		for i, v := range values {
			s, err := jsonparser.ParseString(v)
			if err != nil {
				return err
			}
			parts[i] = s
		}
		msgs.add(prefix, strings.Join(parts, ", "), file)
		return nil
	}

	for i, v := range values {
		if err := flattenJSONValue(msgs, v, types[i], join(prefix, strconv.Itoa(i)), file); err != nil {
			return err
		}
	}
	return nil
}
