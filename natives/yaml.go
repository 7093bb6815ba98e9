package natives

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"nilan/value"
	"nilan/vm"
)

// yamlTableClassName is the convention class every YAMLDecode result is an
// instance of. SPEC_FULL.md OQ-7: the language has no array/list type, so a
// decoded YAML sequence becomes an instance with numbered fields _0, _1, ...
// rather than a new kind of value.
const yamlTableClassName = "YamlTable"

func yamlTableClass(v *vm.VM) *value.ClassObj {
	if existing, ok := v.GetGlobal(yamlTableClassName); ok {
		if class, ok := existing.AsObject().(*value.ClassObj); ok {
			return class
		}
	}
	class := v.NewClass(yamlTableClassName)
	v.SetGlobal(yamlTableClassName, value.Obj(class))
	return class
}

// YAMLDecode parses its single string argument as YAML and returns the
// result as a Nilan value: scalars map directly (number/string/bool/nil),
// and both YAML mappings and sequences become a YamlTable instance (the
// latter keyed by _0, _1, ... per OQ-7).
func YAMLDecode(host any, args []value.Value) (value.Value, error) {
	v, ok := host.(*vm.VM)
	if !ok {
		return value.Value{}, fmt.Errorf("yamlDecode requires a VM host")
	}
	if len(args) != 1 || !args[0].IsObjType(value.ObjStringType) {
		return value.Value{}, fmt.Errorf("yamlDecode expects one string argument")
	}
	src := args[0].AsObject().(*value.StringObj).Chars

	var decoded any
	if err := yaml.Unmarshal([]byte(src), &decoded); err != nil {
		return value.Value{}, fmt.Errorf("yamlDecode: %v", err)
	}
	return goToValue(v, decoded), nil
}

// YAMLEncode marshals a YamlTable instance (or a bare scalar) back to a
// YAML document string.
func YAMLEncode(host any, args []value.Value) (value.Value, error) {
	v, ok := host.(*vm.VM)
	if !ok {
		return value.Value{}, fmt.Errorf("yamlEncode requires a VM host")
	}
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("yamlEncode expects one argument")
	}
	goVal, err := valueToGo(args[0])
	if err != nil {
		return value.Value{}, err
	}
	out, err := yaml.Marshal(goVal)
	if err != nil {
		return value.Value{}, fmt.Errorf("yamlEncode: %v", err)
	}
	return v.NewString(string(out)), nil
}

func goToValue(v *vm.VM, goVal any) value.Value {
	switch t := goVal.(type) {
	case nil:
		return value.Nil()
	case bool:
		return value.Bool(t)
	case int:
		return value.Number(float64(t))
	case float64:
		return value.Number(t)
	case string:
		return v.NewString(t)
	case map[string]any:
		class := yamlTableClass(v)
		inst := v.NewInstance(class)
		for key, val := range t {
			inst.Fields.Set(key, goToValue(v, val))
		}
		return value.Obj(inst)
	case []any:
		class := yamlTableClass(v)
		inst := v.NewInstance(class)
		for i, val := range t {
			inst.Fields.Set(fmt.Sprintf("_%d", i), goToValue(v, val))
		}
		return value.Obj(inst)
	default:
		return v.NewString(fmt.Sprint(t))
	}
}

func valueToGo(v value.Value) (any, error) {
	switch {
	case v.IsNil():
		return nil, nil
	case v.IsBool():
		return v.AsBool(), nil
	case v.IsNumber():
		return v.AsNumber(), nil
	case v.IsObjType(value.ObjStringType):
		return v.AsObject().(*value.StringObj).Chars, nil
	case v.IsObjType(value.ObjInstanceType):
		inst := v.AsObject().(*value.InstanceObj)
		out := map[string]any{}
		var err error
		inst.Fields.Each(func(key string, fv value.Value) {
			if err != nil {
				return
			}
			var converted any
			converted, err = valueToGo(fv)
			out[key] = converted
		})
		return out, err
	default:
		return nil, fmt.Errorf("yamlEncode: cannot encode a %s", v.TypeName())
	}
}
